package expense

import (
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusDraft, true},
		{StatusSubmitted, true},
		{StatusApproved, true},
		{StatusRejected, true},
		{StatusPaid, true},
		{Status("CANCELLED"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
		})
	}
}

func TestStatus_IsEditable(t *testing.T) {
	assert.True(t, StatusDraft.IsEditable())
	assert.True(t, StatusRejected.IsEditable())
	assert.False(t, StatusSubmitted.IsEditable())
	assert.False(t, StatusApproved.IsEditable())
	assert.False(t, StatusPaid.IsEditable())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("SUBMITTED")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, s)

	_, err = ParseStatus("submitted")
	assert.ErrorIs(t, err, shared.ErrInvalidEnumValue)
}

func testAllocations(t *testing.T, total decimal.Decimal) []SegmentAllocation {
	t.Helper()
	allocs, err := BuildAllocations(total, []AllocationInput{
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(60)},
		{SegmentID: uuid.New(), Percentage: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)
	return allocs
}

func testExpense(t *testing.T) *Expense {
	t.Helper()
	total := decimal.NewFromFloat(250.00)
	e, err := NewExpense(uuid.New(), time.Now(), "Acme Travel", total, "USD", "conference trip", testAllocations(t, total))
	require.NoError(t, err)
	return e
}

func TestNewExpense(t *testing.T) {
	e := testExpense(t)

	assert.Equal(t, StatusDraft, e.Status)
	assert.Equal(t, "USD", e.Currency)
	assert.Len(t, e.Allocations, 2)
	assert.Nil(t, e.SubmissionDate)

	events := e.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "ExpenseCreated", events[0].EventType())
}

func TestNewExpense_DefaultsCurrency(t *testing.T) {
	total := decimal.NewFromInt(10)
	e, err := NewExpense(uuid.New(), time.Now(), "", total, "", "", testAllocations(t, total))
	require.NoError(t, err)
	assert.Equal(t, "USD", e.Currency)
}

func TestNewExpense_Validation(t *testing.T) {
	total := decimal.NewFromInt(10)
	allocs := testAllocations(t, total)

	_, err := NewExpense(uuid.Nil, time.Now(), "", total, "USD", "", allocs)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewExpense(uuid.New(), time.Now(), "", decimal.Zero, "USD", "", allocs)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewExpense(uuid.New(), time.Now(), "", total, "DOLLARS", "", allocs)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmit(t *testing.T) {
	e := testExpense(t)
	actor := uuid.New()

	err := e.Submit(actor)
	require.NoError(t, err)

	assert.Equal(t, StatusSubmitted, e.Status)
	require.NotNil(t, e.SubmissionDate)

	// draft only
	err = e.Submit(actor)
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestSubmit_RequiresAllocations(t *testing.T) {
	e := testExpense(t)
	e.Allocations = nil

	err := e.Submit(uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestApprove(t *testing.T) {
	e := testExpense(t)
	actor := uuid.New()

	// cannot approve a draft
	err := e.Approve(actor)
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)

	require.NoError(t, e.Submit(actor))
	require.NoError(t, e.Approve(actor))

	assert.Equal(t, StatusApproved, e.Status)
	require.NotNil(t, e.ApprovalDate)
}

func TestReject(t *testing.T) {
	e := testExpense(t)
	actor := uuid.New()
	require.NoError(t, e.Submit(actor))

	err := e.Reject(actor, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, e.Reject(actor, "missing receipt"))
	assert.Equal(t, StatusRejected, e.Status)
	assert.Equal(t, "missing receipt", e.RejectionReason)
	assert.True(t, e.IsEditable())
}

func TestMarkPaid(t *testing.T) {
	e := testExpense(t)
	actor := uuid.New()
	require.NoError(t, e.Submit(actor))

	err := e.MarkPaid(actor, "PAY-001")
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)

	require.NoError(t, e.Approve(actor))
	require.NoError(t, e.MarkPaid(actor, "PAY-001"))

	assert.Equal(t, StatusPaid, e.Status)
	assert.Equal(t, "PAY-001", e.PaymentReference)
	require.NotNil(t, e.PaymentDate)
	assert.True(t, e.Status.IsTerminal())
}

func TestReplaceAllocations_RejectedBackToDraft(t *testing.T) {
	e := testExpense(t)
	actor := uuid.New()
	require.NoError(t, e.Submit(actor))
	require.NoError(t, e.Reject(actor, "wrong segment"))

	total := decimal.NewFromInt(300)
	prior, err := e.ReplaceAllocations(total, testAllocations(t, total))
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, prior)
	assert.Equal(t, StatusDraft, e.Status)
	assert.Empty(t, e.RejectionReason)
	assert.True(t, total.Equal(e.TotalAmount))
}

func TestReplaceAllocations_NotEditable(t *testing.T) {
	e := testExpense(t)
	require.NoError(t, e.Submit(uuid.New()))

	total := decimal.NewFromInt(300)
	prior, err := e.ReplaceAllocations(total, testAllocations(t, total))
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	assert.Equal(t, StatusSubmitted, prior)
}

func TestDelete(t *testing.T) {
	e := testExpense(t)
	require.NoError(t, e.Delete())
	assert.True(t, e.IsDeleted())

	e2 := testExpense(t)
	require.NoError(t, e2.Submit(uuid.New()))
	err := e2.Delete()
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestAddDocument(t *testing.T) {
	e := testExpense(t)
	doc, err := NewDocument("receipt.pdf", "application/pdf", 2048, "docs/receipt.pdf", uuid.New())
	require.NoError(t, err)

	e.AddDocument(doc)
	require.Len(t, e.Documents, 1)
	assert.Equal(t, e.ID, e.Documents[0].ExpenseID)
}
