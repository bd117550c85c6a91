package domain

import "errors"

// ErrNoAdvisoryLink reports that a storm's detail page was fetched but held
// no recognizable advisory-data link. This is an expected outcome given the
// source's inconsistent markup and must stay distinguishable from a transport
// failure, which wraps its own error.
var ErrNoAdvisoryLink = errors.New("no advisory link found")
