package expense

import (
	"fmt"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SegmentAllocation splits a share of one expense against one segment.
// It never exists without its parent expense and is replaced wholesale
// when the expense's allocation set changes.
type SegmentAllocation struct {
	shared.BaseEntity
	ExpenseID   uuid.UUID       `json:"expense_id"`
	SegmentID   uuid.UUID       `json:"segment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description"`
}

// AllocationInput is one requested split before validation
type AllocationInput struct {
	SegmentID   uuid.UUID
	Percentage  decimal.Decimal
	Description string
}

// NewAllocationSumError reports an allocation set whose percentages do
// not sum to exactly 100, carrying the actual sum in the message.
func NewAllocationSumError(sum decimal.Decimal) *shared.DomainError {
	return shared.NewDomainError("ALLOCATION_SUM_INVALID",
		fmt.Sprintf("Segment allocations must sum to 100%%. Current sum: %s", sum.String()))
}

// BuildAllocations validates the requested splits and computes each
// allocation's amount. Rules:
//   - at least one allocation
//   - every percentage in (0, 100]
//   - percentages sum to exactly 100 (decimal compare, not float)
//
// Each amount is total * percentage / 100 rounded half-up to 2 decimals
// independently; the amounts may drift from the total by a cent or two
// and the drift is deliberately not redistributed.
func BuildAllocations(totalAmount decimal.Decimal, inputs []AllocationInput) ([]SegmentAllocation, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one segment allocation is required")
	}

	sum := decimal.Zero
	for _, in := range inputs {
		if in.SegmentID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Allocation segment is required")
		}
		if in.Percentage.LessThanOrEqual(decimal.Zero) || in.Percentage.GreaterThan(hundred) {
			return nil, shared.NewDomainError("PERCENTAGE_OUT_OF_RANGE",
				fmt.Sprintf("Allocation percentage %s is outside (0, 100]", in.Percentage.String()))
		}
		sum = sum.Add(in.Percentage)
	}

	if !sum.Equal(hundred) {
		return nil, NewAllocationSumError(sum)
	}

	allocations := make([]SegmentAllocation, len(inputs))
	for i, in := range inputs {
		allocations[i] = SegmentAllocation{
			BaseEntity:  shared.NewBaseEntity(),
			SegmentID:   in.SegmentID,
			Amount:      totalAmount.Mul(in.Percentage).Div(hundred).Round(2),
			Percentage:  in.Percentage,
			Description: in.Description,
		}
	}
	return allocations, nil
}
