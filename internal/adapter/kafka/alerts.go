// Package kafka publishes high-risk alert digests to a Kafka topic for
// downstream consumers (SMS gateways, ward control rooms).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

// AlertDigest is the wire payload: the high-risk subset of one snapshot.
type AlertDigest struct {
	GenerationID string    `json:"generation_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	RainfallMM   float64   `json:"rainfall_mm"`
	Source       string    `json:"rainfall_source"`
	Areas        []string  `json:"high_risk_areas"`
	Count        int       `json:"count"`
}

// Writer produces alert digests to a Kafka topic. It implements
// aggregate.AlertPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the alert topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes the snapshot's high-risk digest and writes it as one
// message keyed by generation ID.
func (w *Writer) Publish(ctx context.Context, snap *domain.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish alert digest: %w", err)
	}
	w.logger.Debug("alert digest published", "generation", snap.GenerationID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals the high-risk digest into a Kafka message.
func serializeToMessage(snap *domain.Snapshot) (kafkago.Message, error) {
	areas := snap.HighRiskAreas()
	digest := AlertDigest{
		GenerationID: snap.GenerationID,
		GeneratedAt:  snap.GeneratedAt,
		RainfallMM:   snap.Rainfall.RainfallMM,
		Source:       snap.Rainfall.Source,
		Areas:        areas,
		Count:        len(areas),
	}

	data, err := json.Marshal(digest)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert digest: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.GenerationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_count", Value: []byte(strconv.Itoa(len(areas)))},
			{Key: "generated_at", Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
