package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/persistence"
)

// StartEventWorker forwards user events to Redis when a client is configured.
func StartEventWorker(dispatcher events.Dispatcher, redis *persistence.Redis, channel string, logger *zap.Logger) bool {
	if dispatcher == nil || !redis.Enabled() {
		return false
	}
	publisher := events.NewRedisPublisher(redis.Client, channel)
	dispatcher.Subscribe(events.EventUserCreated, publisher.Handle)
	logger.Info("event worker started", zap.String("channel", channel))
	return true
}
