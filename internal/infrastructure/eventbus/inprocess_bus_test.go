package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expenseflow/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Expense", uuid.New())
	return &e
}

func TestInProcessBus_DeliversToSubscribedType(t *testing.T) {
	bus := NewInProcessBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"ExpenseApproved"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testEvent("ExpenseApproved")))
	require.NoError(t, bus.Publish(context.Background(), testEvent("ExpenseRejected")))

	require.Len(t, handler.received, 1)
	assert.Equal(t, "ExpenseApproved", handler.received[0].EventType())
}

func TestInProcessBus_CatchAllReceivesEverything(t *testing.T) {
	bus := NewInProcessBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		testEvent("ExpenseCreated"), testEvent("ExpenseSubmitted")))

	assert.Len(t, handler.received, 2)
}

func TestInProcessBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInProcessBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"ExpenseCreated"}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"ExpenseCreated"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), testEvent("ExpenseCreated")))

	assert.Len(t, failing.received, 1)
	assert.Len(t, healthy.received, 1)
}

func TestInProcessBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInProcessBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"ExpenseCreated"}}
	bus.Subscribe(handler, "ExpensePaid")

	require.NoError(t, bus.Publish(context.Background(), testEvent("ExpenseCreated")))
	require.NoError(t, bus.Publish(context.Background(), testEvent("ExpensePaid")))

	require.Len(t, handler.received, 1)
	assert.Equal(t, "ExpensePaid", handler.received[0].EventType())
}
