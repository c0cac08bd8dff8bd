package models

import (
	"encoding/json"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
)

// WorkflowModel is the persistence model for the ApprovalWorkflow
// aggregate. Trigger conditions are stored as opaque JSON.
type WorkflowModel struct {
	AggregateModel
	Name              string      `gorm:"size:200;not null;index"`
	Description       string      `gorm:"type:text"`
	TriggerConditions string      `gorm:"type:text"`
	IsActive          bool        `gorm:"not null;default:true;index"`
	Steps             []StepModel `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for WorkflowModel
func (WorkflowModel) TableName() string {
	return "approval_workflows"
}

// StepModel is the persistence model for ApprovalStep
type StepModel struct {
	BaseModel
	WorkflowID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_workflow_step_order,unique"`
	StepOrder      int        `gorm:"not null;index:idx_workflow_step_order,unique"`
	StepName       string     `gorm:"size:200;not null"`
	ApproverRoleID *uuid.UUID `gorm:"type:uuid"`
	ApproverUserID *uuid.UUID `gorm:"type:uuid"`
	Condition      string     `gorm:"type:text"`
	IsMandatory    bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for StepModel
func (StepModel) TableName() string {
	return "approval_steps"
}

// ActionModel is the persistence model for ApprovalAction
type ActionModel struct {
	BaseModel
	ExpenseID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	StepID      *uuid.UUID `gorm:"type:uuid;index"`
	ApproverID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Action      string     `gorm:"size:20;not null"`
	Comment     string     `gorm:"type:text"`
	ActionDate  time.Time  `gorm:"not null;index"`
	DelegatedTo *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for ActionModel
func (ActionModel) TableName() string {
	return "approval_actions"
}

// HistoryModel is the persistence model for workflow History
type HistoryModel struct {
	BaseModel
	ExpenseID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus *string   `gorm:"size:20"`
	ToStatus   string    `gorm:"size:20;not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Comment    string    `gorm:"type:text"`
	Timestamp  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for HistoryModel
func (HistoryModel) TableName() string {
	return "workflow_history"
}

// CommentModel is the persistence model for expense comments
type CommentModel struct {
	BaseModel
	ExpenseID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"type:text;not null"`
}

// TableName returns the table name for CommentModel
func (CommentModel) TableName() string {
	return "expense_comments"
}

// ToDomain converts WorkflowModel to the domain ApprovalWorkflow aggregate
func (m *WorkflowModel) ToDomain() *workflow.ApprovalWorkflow {
	w := &workflow.ApprovalWorkflow{
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
	}
	m.PopulateAggregateRoot(&w.BaseAggregateRoot)

	if m.TriggerConditions != "" {
		// conditions are opaque; an unreadable blob is treated as absent
		_ = json.Unmarshal([]byte(m.TriggerConditions), &w.TriggerConditions)
	}

	w.Steps = make([]workflow.ApprovalStep, len(m.Steps))
	for i, s := range m.Steps {
		w.Steps[i] = workflow.ApprovalStep{
			BaseEntity:     s.ToDomain(),
			WorkflowID:     s.WorkflowID,
			StepOrder:      s.StepOrder,
			StepName:       s.StepName,
			ApproverRoleID: s.ApproverRoleID,
			ApproverUserID: s.ApproverUserID,
			Condition:      s.Condition,
			IsMandatory:    s.IsMandatory,
		}
	}
	return w
}

// WorkflowModelFromDomain converts a domain ApprovalWorkflow to its persistence model
func WorkflowModelFromDomain(w *workflow.ApprovalWorkflow) *WorkflowModel {
	m := &WorkflowModel{
		Name:        w.Name,
		Description: w.Description,
		IsActive:    w.IsActive,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)

	if len(w.TriggerConditions) > 0 {
		if raw, err := json.Marshal(w.TriggerConditions); err == nil {
			m.TriggerConditions = string(raw)
		}
	}

	m.Steps = make([]StepModel, len(w.Steps))
	for i, s := range w.Steps {
		sm := StepModel{
			WorkflowID:     w.ID,
			StepOrder:      s.StepOrder,
			StepName:       s.StepName,
			ApproverRoleID: s.ApproverRoleID,
			ApproverUserID: s.ApproverUserID,
			Condition:      s.Condition,
			IsMandatory:    s.IsMandatory,
		}
		sm.FromDomainBaseEntity(s.BaseEntity)
		m.Steps[i] = sm
	}
	return m
}

// ToDomain converts ActionModel to the domain ApprovalAction
func (m *ActionModel) ToDomain() *workflow.ApprovalAction {
	return &workflow.ApprovalAction{
		BaseEntity:  m.BaseModel.ToDomain(),
		ExpenseID:   m.ExpenseID,
		StepID:      m.StepID,
		ApproverID:  m.ApproverID,
		Action:      workflow.ActionType(m.Action),
		Comment:     m.Comment,
		ActionDate:  m.ActionDate,
		DelegatedTo: m.DelegatedTo,
	}
}

// ActionModelFromDomain converts a domain ApprovalAction to its persistence model
func ActionModelFromDomain(a *workflow.ApprovalAction) *ActionModel {
	m := &ActionModel{
		ExpenseID:   a.ExpenseID,
		StepID:      a.StepID,
		ApproverID:  a.ApproverID,
		Action:      a.Action.String(),
		Comment:     a.Comment,
		ActionDate:  a.ActionDate,
		DelegatedTo: a.DelegatedTo,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// ToDomain converts HistoryModel to the domain History record
func (m *HistoryModel) ToDomain() *workflow.History {
	h := &workflow.History{
		BaseEntity: m.BaseModel.ToDomain(),
		ExpenseID:  m.ExpenseID,
		ToStatus:   expense.Status(m.ToStatus),
		ActorID:    m.ActorID,
		Comment:    m.Comment,
		Timestamp:  m.Timestamp,
	}
	if m.FromStatus != nil {
		s := expense.Status(*m.FromStatus)
		h.FromStatus = &s
	}
	return h
}

// HistoryModelFromDomain converts a domain History record to its persistence model
func HistoryModelFromDomain(h *workflow.History) *HistoryModel {
	m := &HistoryModel{
		ExpenseID: h.ExpenseID,
		ToStatus:  h.ToStatus.String(),
		ActorID:   h.ActorID,
		Comment:   h.Comment,
		Timestamp: h.Timestamp,
	}
	if h.FromStatus != nil {
		s := h.FromStatus.String()
		m.FromStatus = &s
	}
	m.FromDomainBaseEntity(h.BaseEntity)
	return m
}

// ToDomain converts CommentModel to the domain Comment
func (m *CommentModel) ToDomain() *workflow.Comment {
	return &workflow.Comment{
		BaseEntity: m.BaseModel.ToDomain(),
		ExpenseID:  m.ExpenseID,
		AuthorID:   m.AuthorID,
		Text:       m.Text,
	}
}

// CommentModelFromDomain converts a domain Comment to its persistence model
func CommentModelFromDomain(c *workflow.Comment) *CommentModel {
	m := &CommentModel{
		ExpenseID: c.ExpenseID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
