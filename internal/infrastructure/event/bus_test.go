package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func testEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Test", "test-1")
	return &evt
}

func TestInMemoryEventBus(t *testing.T) {
	newBus := func() *InMemoryEventBus {
		return NewInMemoryEventBus(zap.NewNop())
	}

	t.Run("delivers to subscribed handler", func(t *testing.T) {
		bus := newBus()
		h := &recordingHandler{types: []string{"test.created"}}
		bus.Subscribe(h)

		err := bus.Publish(context.Background(), testEvent("test.created"))
		require.NoError(t, err)
		require.Len(t, h.received, 1)
		assert.Equal(t, "test.created", h.received[0].EventType())
	})

	t.Run("ignores events of other types", func(t *testing.T) {
		bus := newBus()
		h := &recordingHandler{types: []string{"test.created"}}
		bus.Subscribe(h)

		err := bus.Publish(context.Background(), testEvent("test.deleted"))
		require.NoError(t, err)
		assert.Empty(t, h.received)
	})

	t.Run("handler without types receives everything", func(t *testing.T) {
		bus := newBus()
		h := &recordingHandler{}
		bus.Subscribe(h)

		err := bus.Publish(context.Background(), testEvent("test.created"), testEvent("test.deleted"))
		require.NoError(t, err)
		assert.Len(t, h.received, 2)
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := newBus()
		h := &recordingHandler{types: []string{"test.created"}}
		bus.Subscribe(h, "test.deleted")

		err := bus.Publish(context.Background(), testEvent("test.created"))
		require.NoError(t, err)
		assert.Empty(t, h.received)

		err = bus.Publish(context.Background(), testEvent("test.deleted"))
		require.NoError(t, err)
		assert.Len(t, h.received, 1)
	})

	t.Run("failing handler does not block others", func(t *testing.T) {
		bus := newBus()
		failing := &recordingHandler{types: []string{"test.created"}, err: errors.New("handler broke")}
		ok := &recordingHandler{types: []string{"test.created"}}
		bus.Subscribe(failing)
		bus.Subscribe(ok)

		err := bus.Publish(context.Background(), testEvent("test.created"))
		require.Error(t, err)
		assert.Len(t, ok.received, 1)
	})

	t.Run("panicking handler becomes an error", func(t *testing.T) {
		bus := newBus()
		bus.Subscribe(&recordingHandler{types: []string{"test.created"}, panics: true})

		err := bus.Publish(context.Background(), testEvent("test.created"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := newBus()
		h := &recordingHandler{types: []string{"test.created"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		err := bus.Publish(context.Background(), testEvent("test.created"))
		require.NoError(t, err)
		assert.Empty(t, h.received)
	})
}
