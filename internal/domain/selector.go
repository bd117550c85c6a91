package domain

// SelectPolicy picks the authoritative current fix from a parsed deck.
// Policies must not reorder or mutate the input.
type SelectPolicy func(fixes []AdvisoryFix) (AdvisoryFix, bool)

// SelectLast returns the last fix in deck order. Upstream appends the newest
// fix at the end of the deck, so this is the default policy even though the
// ordering is a convention rather than a guarantee.
func SelectLast(fixes []AdvisoryFix) (AdvisoryFix, bool) {
	if len(fixes) == 0 {
		return AdvisoryFix{}, false
	}
	return fixes[len(fixes)-1], true
}

// SelectByTime returns the fix with the greatest timestamp. Ties go to the
// later deck position. Guard policy for sources that stop appending in
// chronological order.
func SelectByTime(fixes []AdvisoryFix) (AdvisoryFix, bool) {
	if len(fixes) == 0 {
		return AdvisoryFix{}, false
	}
	latest := fixes[0]
	for _, fix := range fixes[1:] {
		if !fix.Time.Before(latest.Time) {
			latest = fix
		}
	}
	return latest, true
}

// Select applies policy to fixes and returns the chosen fix together with the
// full deck as track history, unmodified and in source order. A nil policy
// defaults to SelectLast. ok is false when the deck holds no valid fixes.
func Select(fixes []AdvisoryFix, policy SelectPolicy) (latest AdvisoryFix, history []AdvisoryFix, ok bool) {
	if policy == nil {
		policy = SelectLast
	}
	latest, ok = policy(fixes)
	return latest, fixes, ok
}
