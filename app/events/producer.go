// Package events publishes reservation lifecycle events to the marketplace
// event stream for downstream consumers (dashboards, analytics).
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
)

type Producer struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 500 * time.Millisecond
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		for err := range producer.Errors() {
			logrus.WithError(err).Error("Failed to publish reservation event")
		}
	}()

	return &Producer{producer: producer, topic: topic}, nil
}

// Status codes are passed through untranslated: depending on event_type they
// are reservation statuses (property transitions) or attempt statuses.
type reservationEventMessage struct {
	PropertyID uint64  `json:"property_id"`
	AttemptID  *uint64 `json:"attempt_id,omitempty"`
	EventType  string  `json:"event_type"`
	OldStatus  *int32  `json:"old_status,omitempty"`
	NewStatus  int32   `json:"new_status"`
	OccurredAt string  `json:"occurred_at"`
}

func (p *Producer) PublishReservationEvent(event *entity.ReservationEvent) {
	if event == nil {
		return
	}

	message := reservationEventMessage{
		PropertyID: event.PropertyID,
		AttemptID:  event.AttemptID,
		EventType:  event.EventType,
		OldStatus:  event.OldStatus,
		NewStatus:  event.NewStatus,
		OccurredAt: event.CreatedAt.UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode reservation event")
		return
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	}
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
