package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	"github.com/JorgeDuranS/AppSegura/internal/infra/config"
	"github.com/JorgeDuranS/AppSegura/internal/infra/logger"
)

const schemaVersion = "1.0"

// AuditPublisher implements port.AuditPublisher using Kafka.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewAuditPublisher constructs a Kafka-backed audit event publisher.
func NewAuditPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *AuditPublisher {
	return &AuditPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *AuditPublisher) publish(ctx context.Context, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes appsegura.user.registered events.
func (p *AuditPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, "user.registered", event.RegisteredAt, payload)
}

// PublishLogin publishes appsegura.user.login events. The client IP is
// masked before it leaves the process.
func (p *AuditPublisher) PublishLogin(ctx context.Context, event domain.LoginEvent) error {
	payload := struct {
		Username   string    `json:"username"`
		ClientIP   string    `json:"client_ip"`
		Success    bool      `json:"success"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		Username:   event.Username,
		ClientIP:   logger.MaskIP(event.ClientIP),
		Success:    event.Success,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, "user.login", event.OccurredAt, payload)
}

// PublishDataSaved publishes appsegura.data.saved events. Only the payload
// length travels; the plaintext never leaves the request path.
func (p *AuditPublisher) PublishDataSaved(ctx context.Context, event domain.DataSavedEvent) error {
	payload := struct {
		Username   string    `json:"username"`
		PayloadLen int       `json:"payload_len"`
		SavedAt    time.Time `json:"saved_at"`
	}{
		Username:   event.Username,
		PayloadLen: event.PayloadLen,
		SavedAt:    event.SavedAt.UTC(),
	}

	return p.publish(ctx, "data.saved", event.SavedAt, payload)
}

var _ port.AuditPublisher = (*AuditPublisher)(nil)
