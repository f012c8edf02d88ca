package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/events"
)

// AuditService records account and token lifecycle events for audit purposes.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService builds the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes the audit log to every lifecycle event.
func (s *AuditService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventUserLoggedOut,
		events.EventUserPasswordChanged,
		events.EventUserNameChanged,
		events.EventUserDeleted,
		events.EventTokenRevoked,
	} {
		s.dispatcher.Subscribe(eventType, s.logEvent)
	}
}

func (s *AuditService) logEvent(_ context.Context, event events.Event) error {
	s.logger.Info("audit",
		zap.String("event", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}
