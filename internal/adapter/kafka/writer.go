// Package kafka publishes aggregated storm features to the downstream feed topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cyclone-feed-service/internal/config"
	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
)

// Writer produces feature messages to a Kafka topic.
// It implements aggregator.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishFeatures serializes and publishes every feature of a collection to
// the sink topic in a single WriteMessages call. Keying by storm id keeps a
// storm's updates ordered within its partition.
func (w *Writer) PublishFeatures(ctx context.Context, fc domain.FeatureCollection) error {
	if len(fc.Features) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(fc.Features))
	for i := range fc.Features {
		msg, err := serializeFeature(fc.Features[i], fc.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeFeature marshals one storm feature into a Kafka message carrying
// its GeoJSON wire form.
func serializeFeature(f domain.StormFeature, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(f.GeoJSON())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize storm feature: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(f.StormID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_agency", Value: []byte(f.SourceAgency)},
			{Key: "data_quality", Value: []byte(f.Quality)},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
