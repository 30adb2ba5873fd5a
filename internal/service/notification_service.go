package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/request-portal/internal/config"
	"github.com/spec-kit/request-portal/internal/events"
	"github.com/spec-kit/request-portal/internal/notify"
)

// NotificationService emits best-effort email for domain events. Failures
// are logged and never reach the operation that triggered the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notify.Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. mailer may be nil when SMTP
// is not configured; events are then only logged.
func NewNotificationService(dispatcher events.Dispatcher, mailer notify.Mailer, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.handleRequestStatusChanged)
}

func (n *NotificationService) handleRequestCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestCreated", zap.String("request_id", event.RequestID))
	payload, ok := event.Payload.(events.RequestCreatedPayload)
	if !ok {
		return nil
	}
	if n.mailer == nil || n.cfg.AdminEmail == "" {
		n.logger.Debug("notification skipped; mail not configured", zap.String("request_id", event.RequestID))
		return nil
	}

	phone := ""
	if payload.PhoneNumber != nil {
		phone = *payload.PhoneNumber
	}
	err := n.mailer.SendNewRequestEmail(n.cfg.AdminEmail, notify.RequestEmail{
		Name:        payload.Name,
		Email:       payload.Email,
		PhoneNumber: phone,
		Service:     payload.Service,
		Message:     payload.Message,
		Date:        payload.CreatedAt,
	})
	if err != nil {
		// non-fatal to the creation that raised the event
		n.logger.Warn("new request email failed", zap.String("request_id", event.RequestID), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleRequestStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestStatusChanged",
		zap.String("request_id", event.RequestID),
		zap.Any("payload", event.Payload))
	return nil
}
