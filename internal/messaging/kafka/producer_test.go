package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

func newMockProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mockProducer := mocks.NewSyncProducer(t, nil)
	return &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}, mockProducer
}

func TestProducer_PublishEvent(t *testing.T) {
	producer, mockProducer := newMockProducer(t)
	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderEvent(
		EventTypeOrderCreated,
		"order-123",
		"customer-1",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("80.00"),
		2,
	)

	if err := producer.PublishEvent(TopicOrderEvents, "order-123", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatalf("unmet mock expectations: %v", err)
	}
}

func TestProducer_PublishEventError(t *testing.T) {
	producer, mockProducer := newMockProducer(t)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishEvent(TopicOrderEvents, "order-123", map[string]string{"k": "v"})
	if err == nil {
		t.Fatal("expected publish error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatalf("unmet mock expectations: %v", err)
	}
}

func TestOutboxPublisher_EnvelopesMessage(t *testing.T) {
	producer, mockProducer := newMockProducer(t)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var envelope struct {
			ID            string          `json:"id"`
			AggregateType string          `json:"aggregate_type"`
			AggregateID   string          `json:"aggregate_id"`
			EventType     string          `json:"event_type"`
			Payload       json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return err
		}
		if envelope.EventType != string(EventTypeOrderUpdated) {
			t.Errorf("unexpected event type %q", envelope.EventType)
		}
		if envelope.AggregateID != "order-123" {
			t.Errorf("unexpected aggregate id %q", envelope.AggregateID)
		}
		return nil
	})

	publisher := NewOutboxPublisher(producer, "")
	err := publisher.Publish(domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: AggregateTypeOrder,
		AggregateID:   "order-123",
		EventType:     string(EventTypeOrderUpdated),
		Payload:       []byte(`{"order_id":"order-123"}`),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatalf("unmet mock expectations: %v", err)
	}
}
