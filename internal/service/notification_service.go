package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
)

// Notification is a rendered message about a ticket event.
type Notification struct {
	TicketID int64
	Subject  string
	// Urgent notifications also go to the webhook.
	Urgent bool
}

// NotificationService turns ticket events into notifications. Delivery is
// logged only; email and webhook sends are stubs keyed on configuration.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger.Named("notifications"),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(n.handle,
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketCommentAdded,
	)
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	note, ok := ComposeNotification(event)
	if !ok {
		n.logger.Debug("no notification for event", zap.String("event_type", string(event.Type)))
		return nil
	}
	n.logger.Info(note.Subject,
		zap.Int64("ticket_id", note.TicketID),
		zap.String("event_id", event.ID),
		zap.String("actor", event.Actor.Username))
	n.sendEmail(ctx, note)
	if note.Urgent {
		n.sendWebhook(ctx, note)
	}
	return nil
}

// ComposeNotification renders the message for a ticket event. It reports
// false for events that carry no ticket payload.
func ComposeNotification(event events.Event) (Notification, bool) {
	note := Notification{TicketID: event.TicketID}
	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		note.Subject = fmt.Sprintf("Ticket #%d opened by %s: %s [%s/%s]",
			event.TicketID, event.Actor.Username, p.Title, p.Priority, p.Category)
		note.Urgent = p.Priority == domain.TicketPriorityHigh
	case events.TicketStatusChangedPayload:
		note.Subject = fmt.Sprintf("Ticket #%d moved %s -> %s by %s",
			event.TicketID, p.OldStatus, p.NewStatus, event.Actor.Username)
		note.Urgent = p.NewStatus == domain.TicketStatusResolved
	case events.TicketCommentAddedPayload:
		note.Subject = fmt.Sprintf("New comment on ticket #%d by %s: %s",
			event.TicketID, event.Actor.Username, p.BodyPreview)
	default:
		return Notification{}, false
	}
	return note, true
}

func (n *NotificationService) sendEmail(_ context.Context, note Notification) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email stub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", note.TicketID),
		zap.String("subject", note.Subject))
}

func (n *NotificationService) sendWebhook(_ context.Context, note Notification) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook stub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("ticket_id", note.TicketID),
		zap.String("subject", note.Subject))
}
