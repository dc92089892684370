package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherDeliversToSubscribedTypeOnly(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var created, assigned []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		created = append(created, e)
		return nil
	})
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, e Event) error {
		assigned = append(assigned, e)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-1", Type: EventTicketCreated, TicketID: "tic-1"})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, "tic-1", created[0].TicketID)
	require.Empty(t, assigned)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())
	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketStatusChanged, TicketID: "tic-1"})
	require.NoError(t, err)
}

func TestDispatcherIsolatesHandlerFailures(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	calls := 0
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("handler down")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "tic-1"})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDispatcherFanOutOrder(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		dispatcher.Subscribe(EventTicketMessageAdded, func(context.Context, Event) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketMessageAdded}))
	require.Equal(t, []string{"first", "second", "third"}, order)
}
