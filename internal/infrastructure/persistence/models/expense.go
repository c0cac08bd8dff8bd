package models

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate
type ExpenseModel struct {
	AggregateModel
	SubmitterID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpenseDate      time.Time       `gorm:"not null;index"`
	Vendor           string          `gorm:"size:200"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(19,4);not null"`
	Currency         string          `gorm:"size:3;not null"`
	Description      string          `gorm:"type:text"`
	Status           string          `gorm:"size:20;not null;index"`
	SubmissionDate   *time.Time
	ApprovalDate     *time.Time
	PaymentDate      *time.Time
	PaymentReference string            `gorm:"size:100"`
	RejectionReason  string            `gorm:"type:text"`
	Allocations      []AllocationModel `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
	Documents        []DocumentModel   `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for ExpenseModel
func (ExpenseModel) TableName() string {
	return "expenses"
}

// AllocationModel is the persistence model for SegmentAllocation
type AllocationModel struct {
	BaseModel
	ExpenseID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SegmentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(19,4);not null"`
	Percentage  decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	Description string          `gorm:"size:500"`
}

// TableName returns the table name for AllocationModel
func (AllocationModel) TableName() string {
	return "segment_allocations"
}

// DocumentModel is the persistence model for expense documents
type DocumentModel struct {
	BaseModel
	ExpenseID   uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"size:255;not null"`
	FileType    string    `gorm:"size:100"`
	FileSize    int64     `gorm:"not null"`
	StoragePath string    `gorm:"size:500;not null"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for DocumentModel
func (DocumentModel) TableName() string {
	return "expense_documents"
}

// ToDomain converts ExpenseModel to the domain Expense aggregate
func (m *ExpenseModel) ToDomain() *expense.Expense {
	e := &expense.Expense{
		SubmitterID:      m.SubmitterID,
		ExpenseDate:      m.ExpenseDate,
		Vendor:           m.Vendor,
		TotalAmount:      m.TotalAmount,
		Currency:         m.Currency,
		Description:      m.Description,
		Status:           expense.Status(m.Status),
		SubmissionDate:   m.SubmissionDate,
		ApprovalDate:     m.ApprovalDate,
		PaymentDate:      m.PaymentDate,
		PaymentReference: m.PaymentReference,
		RejectionReason:  m.RejectionReason,
	}
	m.PopulateAggregateRoot(&e.BaseAggregateRoot)

	e.Allocations = make([]expense.SegmentAllocation, len(m.Allocations))
	for i, a := range m.Allocations {
		e.Allocations[i] = expense.SegmentAllocation{
			BaseEntity:  a.ToDomain(),
			ExpenseID:   a.ExpenseID,
			SegmentID:   a.SegmentID,
			Amount:      a.Amount,
			Percentage:  a.Percentage,
			Description: a.Description,
		}
	}
	e.Documents = make([]expense.Document, len(m.Documents))
	for i, d := range m.Documents {
		e.Documents[i] = expense.Document{
			BaseEntity:  d.ToDomain(),
			ExpenseID:   d.ExpenseID,
			FileName:    d.FileName,
			FileType:    d.FileType,
			FileSize:    d.FileSize,
			StoragePath: d.StoragePath,
			UploadedBy:  d.UploadedBy,
		}
	}
	return e
}

// ExpenseModelFromDomain converts a domain Expense to its persistence model
func ExpenseModelFromDomain(e *expense.Expense) *ExpenseModel {
	m := &ExpenseModel{
		SubmitterID:      e.SubmitterID,
		ExpenseDate:      e.ExpenseDate,
		Vendor:           e.Vendor,
		TotalAmount:      e.TotalAmount,
		Currency:         e.Currency,
		Description:      e.Description,
		Status:           e.Status.String(),
		SubmissionDate:   e.SubmissionDate,
		ApprovalDate:     e.ApprovalDate,
		PaymentDate:      e.PaymentDate,
		PaymentReference: e.PaymentReference,
		RejectionReason:  e.RejectionReason,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)

	m.Allocations = make([]AllocationModel, len(e.Allocations))
	for i, a := range e.Allocations {
		am := AllocationModel{
			ExpenseID:   e.ID,
			SegmentID:   a.SegmentID,
			Amount:      a.Amount,
			Percentage:  a.Percentage,
			Description: a.Description,
		}
		am.FromDomainBaseEntity(a.BaseEntity)
		m.Allocations[i] = am
	}
	m.Documents = make([]DocumentModel, len(e.Documents))
	for i, d := range e.Documents {
		dm := DocumentModel{
			ExpenseID:   e.ID,
			FileName:    d.FileName,
			FileType:    d.FileType,
			FileSize:    d.FileSize,
			StoragePath: d.StoragePath,
			UploadedBy:  d.UploadedBy,
		}
		dm.FromDomainBaseEntity(d.BaseEntity)
		m.Documents[i] = dm
	}
	return m
}
