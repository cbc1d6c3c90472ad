package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/events"
)

func TestNotificationService_WelcomeEmailStub(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{EmailFrom: "noreply@example.com"}).RegisterHandlers()

	event := events.NewEvent(events.EventUserCreated, 5, events.UserCreatedPayload{UserID: 5, Email: "a@b.com"})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	stub := logs.FilterMessage("sendWelcomeEmailStub").All()
	require.Len(t, stub, 1)
	assert.Equal(t, "a@b.com", stub[0].ContextMap()["to"])
	assert.Equal(t, 1, logs.FilterMessage("UserCreated").Len())
}

func TestNotificationService_NoSenderConfigured(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	event := events.NewEvent(events.EventUserCreated, 5, events.UserCreatedPayload{UserID: 5, Email: "a@b.com"})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	assert.Equal(t, 0, logs.FilterMessage("sendWelcomeEmailStub").Len())
}

func TestNotificationService_NilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()
	})
}
