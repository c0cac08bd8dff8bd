package models

import (
	"encoding/json"
	"time"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetModel is the persistence model for the Budget aggregate
type BudgetModel struct {
	AggregateModel
	Name            string          `gorm:"size:200;not null;index"`
	Description     string          `gorm:"type:text"`
	SegmentID       *uuid.UUID      `gorm:"type:uuid;index"`
	DepartmentID    *uuid.UUID      `gorm:"type:uuid;index"`
	Period          string          `gorm:"size:20;not null"`
	StartDate       time.Time       `gorm:"not null;index"`
	EndDate         time.Time       `gorm:"not null;index"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(19,4);not null"`
	ConsumedAmount  decimal.Decimal `gorm:"type:decimal(19,4);not null"`
	IsActive        bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for BudgetModel
func (BudgetModel) TableName() string {
	return "budgets"
}

// ThresholdModel is the persistence model for BudgetThreshold.
// The composite unique index backstops the per-budget percentage
// uniqueness the application enforces.
type ThresholdModel struct {
	BaseModel
	BudgetID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_budget_threshold_pct,unique"`
	Percentage   decimal.Decimal `gorm:"type:decimal(7,4);not null;index:idx_budget_threshold_pct,unique"`
	AlertEnabled bool            `gorm:"not null;default:true;index"`
	RecipientIDs string          `gorm:"type:text"`
}

// TableName returns the table name for ThresholdModel
func (ThresholdModel) TableName() string {
	return "budget_thresholds"
}

// AlertModel is the persistence model for BudgetAlert
type AlertModel struct {
	BaseModel
	BudgetID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_alert_budget_threshold;index:uniq_open_alert_pair,unique,where:is_acknowledged = false"`
	ThresholdID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_alert_budget_threshold;index:uniq_open_alert_pair,unique,where:is_acknowledged = false"`
	TriggeredDate    time.Time  `gorm:"not null;index"`
	Message          string     `gorm:"size:500;not null"`
	IsAcknowledged   bool       `gorm:"not null;default:false;index"`
	AcknowledgedDate *time.Time
	AcknowledgedBy   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for AlertModel
func (AlertModel) TableName() string {
	return "budget_alerts"
}

// ToDomain converts BudgetModel to the domain Budget aggregate
func (m *BudgetModel) ToDomain() *budget.Budget {
	b := &budget.Budget{
		Name:            m.Name,
		Description:     m.Description,
		SegmentID:       m.SegmentID,
		DepartmentID:    m.DepartmentID,
		Period:          budget.Period(m.Period),
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		AllocatedAmount: m.AllocatedAmount,
		ConsumedAmount:  m.ConsumedAmount,
		IsActive:        m.IsActive,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// BudgetModelFromDomain converts a domain Budget to its persistence model
func BudgetModelFromDomain(b *budget.Budget) *BudgetModel {
	m := &BudgetModel{
		Name:            b.Name,
		Description:     b.Description,
		SegmentID:       b.SegmentID,
		DepartmentID:    b.DepartmentID,
		Period:          b.Period.String(),
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		AllocatedAmount: b.AllocatedAmount,
		ConsumedAmount:  b.ConsumedAmount,
		IsActive:        b.IsActive,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// ToDomain converts ThresholdModel to the domain BudgetThreshold
func (m *ThresholdModel) ToDomain() *budget.BudgetThreshold {
	t := &budget.BudgetThreshold{
		BaseEntity:   m.BaseModel.ToDomain(),
		BudgetID:     m.BudgetID,
		Percentage:   m.Percentage,
		AlertEnabled: m.AlertEnabled,
	}
	if m.RecipientIDs != "" {
		_ = json.Unmarshal([]byte(m.RecipientIDs), &t.RecipientIDs)
	}
	return t
}

// ThresholdModelFromDomain converts a domain BudgetThreshold to its persistence model
func ThresholdModelFromDomain(t *budget.BudgetThreshold) *ThresholdModel {
	m := &ThresholdModel{
		BudgetID:     t.BudgetID,
		Percentage:   t.Percentage,
		AlertEnabled: t.AlertEnabled,
	}
	if len(t.RecipientIDs) > 0 {
		if raw, err := json.Marshal(t.RecipientIDs); err == nil {
			m.RecipientIDs = string(raw)
		}
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// ToDomain converts AlertModel to the domain BudgetAlert
func (m *AlertModel) ToDomain() *budget.BudgetAlert {
	return &budget.BudgetAlert{
		BaseEntity:       m.BaseModel.ToDomain(),
		BudgetID:         m.BudgetID,
		ThresholdID:      m.ThresholdID,
		TriggeredDate:    m.TriggeredDate,
		Message:          m.Message,
		IsAcknowledged:   m.IsAcknowledged,
		AcknowledgedDate: m.AcknowledgedDate,
		AcknowledgedBy:   m.AcknowledgedBy,
	}
}

// AlertModelFromDomain converts a domain BudgetAlert to its persistence model
func AlertModelFromDomain(a *budget.BudgetAlert) *AlertModel {
	m := &AlertModel{
		BudgetID:         a.BudgetID,
		ThresholdID:      a.ThresholdID,
		TriggeredDate:    a.TriggeredDate,
		Message:          a.Message,
		IsAcknowledged:   a.IsAcknowledged,
		AcknowledgedDate: a.AcknowledgedDate,
		AcknowledgedBy:   a.AcknowledgedBy,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
