package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/service"
)

func TestWorkerDeliversPublishedEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	notifications := service.NewNotificationService(logger, config.NotificationConfig{})
	w := NewNotificationWorker(notifications, logger, 4)
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTicketCreated, "t1", "u1", nil)))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("notification dispatched").Len() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	w.Wait()
}

func TestWorkerReportsFullQueue(t *testing.T) {
	w := NewNotificationWorker(service.NewNotificationService(zap.NewNop(), config.NotificationConfig{}), zap.NewNop(), 1)
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTicketDeleted, "t1", "u1", nil)))
	assert.ErrorIs(t, dispatcher.Publish(ctx, events.New(events.EventTicketDeleted, "t2", "u1", nil)), ErrQueueFull)
}
