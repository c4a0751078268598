package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	"github.com/JorgeDuranS/AppSegura/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	fields = append(fields,
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
	)
	p.logger.Info("Stub event published", fields...)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent("user.registered", event.RegisteredAt,
		zap.String("user_id", event.UserID),
		zap.String("username", event.Username),
	)
	return nil
}

// PublishLogin logs user.login events.
func (p *StubPublisher) PublishLogin(_ context.Context, event domain.LoginEvent) error {
	p.logEvent("user.login", event.OccurredAt,
		zap.String("username", event.Username),
		zap.String("client_ip", logger.MaskIP(event.ClientIP)),
		zap.Bool("success", event.Success),
	)
	return nil
}

// PublishDataSaved logs data.saved events.
func (p *StubPublisher) PublishDataSaved(_ context.Context, event domain.DataSavedEvent) error {
	p.logEvent("data.saved", event.SavedAt,
		zap.String("username", event.Username),
		zap.Int("payload_len", event.PayloadLen),
	)
	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
