package budget

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Period is the fiscal window a budget covers
type Period string

const (
	PeriodMonthly   Period = "MONTHLY"
	PeriodQuarterly Period = "QUARTERLY"
	PeriodYearly    Period = "YEARLY"
)

// IsValid checks if the period is a valid Period
func (p Period) IsValid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// String returns the string representation of Period
func (p Period) String() string {
	return string(p)
}

// ParsePeriod parses a string into a Period, returning a domain error
// for unknown values.
func ParsePeriod(value string) (Period, error) {
	p := Period(value)
	if !p.IsValid() {
		return "", shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid budget period", value))
	}
	return p, nil
}

// Budget tracks an allocated amount and its consumption for a segment
// or department over a date range. Consumption moves when expenses are
// approved, never on submission.
type Budget struct {
	shared.BaseAggregateRoot
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	SegmentID       *uuid.UUID      `json:"segment_id"`
	DepartmentID    *uuid.UUID      `json:"department_id"`
	Period          Period          `json:"period"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	ConsumedAmount  decimal.Decimal `json:"consumed_amount"`
	IsActive        bool            `json:"is_active"`
}

// NewBudget creates an active budget with zero consumption
func NewBudget(
	name, description string,
	segmentID, departmentID *uuid.UUID,
	period Period,
	startDate, endDate time.Time,
	allocatedAmount decimal.Decimal,
) (*Budget, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Budget name is required")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid budget period", period))
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Budget end date must be after start date")
	}
	if allocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Allocated amount must be positive")
	}

	return &Budget{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		SegmentID:         segmentID,
		DepartmentID:      departmentID,
		Period:            period,
		StartDate:         startDate,
		EndDate:           endDate,
		AllocatedAmount:   allocatedAmount,
		ConsumedAmount:    decimal.Zero,
		IsActive:          true,
	}, nil
}

// RemainingAmount returns allocated minus consumed. It can go negative
// when a budget is overspent.
func (b *Budget) RemainingAmount() decimal.Decimal {
	return b.AllocatedAmount.Sub(b.ConsumedAmount)
}

// UtilizationPercentage returns consumed * 100 / allocated rounded
// half-up to 2 decimals, or zero when nothing is allocated.
func (b *Budget) UtilizationPercentage() decimal.Decimal {
	if b.AllocatedAmount.IsZero() {
		return decimal.Zero
	}
	return b.ConsumedAmount.Mul(hundred).Div(b.AllocatedAmount).Round(2)
}

// AddConsumption records spend against the budget. Overspend is
// permitted; thresholds and alerts surface it.
func (b *Budget) AddConsumption(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Consumption amount must be positive")
	}
	b.ConsumedAmount = b.ConsumedAmount.Add(amount)
	b.UpdatedAt = time.Now()
	return nil
}

// ReduceConsumption reverses spend, flooring at zero
func (b *Budget) ReduceConsumption(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Consumption amount must be positive")
	}
	b.ConsumedAmount = b.ConsumedAmount.Sub(amount)
	if b.ConsumedAmount.IsNegative() {
		b.ConsumedAmount = decimal.Zero
	}
	b.UpdatedAt = time.Now()
	return nil
}

// Covers reports whether the given date falls inside the budget window,
// boundaries inclusive.
func (b *Budget) Covers(date time.Time) bool {
	return !date.Before(b.StartDate) && !date.After(b.EndDate)
}

// Update changes the descriptive fields and allocation of the budget
func (b *Budget) Update(name, description string, allocatedAmount decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Budget name is required")
	}
	if allocatedAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Allocated amount must be positive")
	}
	b.Name = name
	b.Description = description
	b.AllocatedAmount = allocatedAmount
	b.UpdatedAt = time.Now()
	return nil
}

// Activate makes the budget eligible for consumption tracking
func (b *Budget) Activate() {
	b.IsActive = true
	b.UpdatedAt = time.Now()
}

// Deactivate excludes the budget from consumption tracking
func (b *Budget) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}
