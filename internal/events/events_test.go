package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func sampleEvent() Event {
	return Event{
		ID:        "evt-1",
		Type:      EventTicketStatusChanged,
		TicketID:  "t-1",
		Actor:     Actor{UserID: "u2"},
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload: TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusAssigned,
			NewStatus: domain.TicketStatusInProgress,
		},
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	calls := 0
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, 2, calls)
}

func TestStreamValues(t *testing.T) {
	pairs, err := StreamValues(sampleEvent())
	require.NoError(t, err)
	require.Len(t, pairs, 12)
	values := map[string]interface{}{}
	for i := 0; i < len(pairs); i += 2 {
		values[pairs[i].(string)] = pairs[i+1]
	}
	assert.Equal(t, "ticket_status_changed", values["event"])
	assert.Equal(t, "u2", values["actor"])
	assert.Equal(t, "2024-03-01T10:00:00Z", values["created_at"])
	assert.JSONEq(t, `{"old_status":"Asignado","new_status":"En Proceso"}`, values["payload"].(string))
}

func TestRedisStreamSinkPublishes(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sink := NewRedisStreamSink(rdb, "helpdesk.events")
	d := NewInMemoryDispatcher(nil)
	d.Subscribe(EventTicketStatusChanged, sink.Handle)

	event := sampleEvent()
	values, err := StreamValues(event)
	require.NoError(t, err)
	mock.ExpectXAdd(&redis.XAddArgs{Stream: "helpdesk.events", Values: values}).SetVal("1-0")

	require.NoError(t, d.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStreamSinkReturnsError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sink := NewRedisStreamSink(rdb, "helpdesk.events")

	event := sampleEvent()
	values, err := StreamValues(event)
	require.NoError(t, err)
	mock.ExpectXAdd(&redis.XAddArgs{Stream: "helpdesk.events", Values: values}).SetErr(errors.New("down"))

	err = sink.Handle(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "helpdesk.events")
}
