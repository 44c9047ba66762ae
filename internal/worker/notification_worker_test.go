package worker

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type countingPublisher struct {
	channels []string
}

func (p *countingPublisher) Publish(ctx context.Context, channel string, _ interface{}) *redis.IntCmd {
	p.channels = append(p.channels, channel)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestStartNotificationWorker_RegistersHandlersAndRelay(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "http://hooks.local/tickets",
	})
	pub := &countingPublisher{}

	StartNotificationWorker(dispatcher, notifications, events.NewRedisRelay(pub, "ticket-events"), zap.NewNop())

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "1", Type: events.EventTicketCreated, TicketID: 1}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "2", Type: events.EventUserDeleted}))

	assert.Equal(t, []string{"ticket-events", "ticket-events"}, pub.channels)
}

func TestStartNotificationWorker_NilCollaborators(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil, nil, nil, nil)
	})
}
