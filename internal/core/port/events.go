package port

import (
	"context"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
)

// AuditPublisher delivers security-relevant events to an external sink.
// Publishing is best effort; callers must not fail the request on error.
type AuditPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishLogin(ctx context.Context, event domain.LoginEvent) error
	PublishDataSaved(ctx context.Context, event domain.DataSavedEvent) error
}
