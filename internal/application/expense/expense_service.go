package expense

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/segment"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConsumptionTracker moves budget consumption when expenses are
// approved or an approval is undone. Implemented by the budget
// application package; injected here to keep the approval transition
// and its budget effects in one transaction.
type ConsumptionTracker interface {
	Apply(ctx context.Context, repos TransactionalRepositories, exp *expense.Expense) error
	Reverse(ctx context.Context, repos TransactionalRepositories, exp *expense.Expense) error
}

// Service provides application-level expense operations
type Service struct {
	scope       TransactionScope
	expenseRepo expense.Repository
	segmentRepo segment.Repository
	tracker     ConsumptionTracker
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewService creates a new expense Service
func NewService(
	scope TransactionScope,
	expenseRepo expense.Repository,
	segmentRepo segment.Repository,
	tracker ConsumptionTracker,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:       scope,
		expenseRepo: expenseRepo,
		segmentRepo: segmentRepo,
		tracker:     tracker,
		events:      events,
		logger:      logger,
	}
}

// AllocationRequest is one requested segment split
type AllocationRequest struct {
	SegmentID   uuid.UUID       `json:"segment_id" binding:"required"`
	Percentage  decimal.Decimal `json:"percentage" binding:"required"`
	Description string          `json:"description"`
}

// CreateExpenseRequest represents a request to create an expense
type CreateExpenseRequest struct {
	ExpenseDate time.Time           `json:"expense_date" binding:"required"`
	Vendor      string              `json:"vendor"`
	TotalAmount decimal.Decimal     `json:"total_amount" binding:"required"`
	Currency    string              `json:"currency"`
	Description string              `json:"description"`
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// UpdateExpenseRequest represents a request to update an editable expense
type UpdateExpenseRequest struct {
	ExpenseDate time.Time           `json:"expense_date" binding:"required"`
	Vendor      string              `json:"vendor"`
	TotalAmount decimal.Decimal     `json:"total_amount" binding:"required"`
	Description string              `json:"description"`
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// AllocationResponse represents one segment split in API responses
type AllocationResponse struct {
	ID          uuid.UUID       `json:"id"`
	SegmentID   uuid.UUID       `json:"segment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description,omitempty"`
}

// DocumentResponse represents an attached document in API responses
type DocumentResponse struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID               uuid.UUID            `json:"id"`
	SubmitterID      uuid.UUID            `json:"submitter_id"`
	ExpenseDate      time.Time            `json:"expense_date"`
	Vendor           string               `json:"vendor,omitempty"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	Currency         string               `json:"currency"`
	Description      string               `json:"description,omitempty"`
	Status           string               `json:"status"`
	SubmissionDate   *time.Time           `json:"submission_date,omitempty"`
	ApprovalDate     *time.Time           `json:"approval_date,omitempty"`
	PaymentDate      *time.Time           `json:"payment_date,omitempty"`
	PaymentReference string               `json:"payment_reference,omitempty"`
	RejectionReason  string               `json:"rejection_reason,omitempty"`
	Allocations      []AllocationResponse `json:"allocations"`
	Documents        []DocumentResponse   `json:"documents,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Version          int                  `json:"version"`
}

// ListFilter defines filtering options for expense list queries
type ListFilter struct {
	Search      string     `form:"search"`
	Status      string     `form:"status"`
	SubmitterID *uuid.UUID `form:"submitter_id"`
	FromDate    *time.Time `form:"from_date"`
	ToDate      *time.Time `form:"to_date"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

func (s *Service) buildAllocations(ctx context.Context, total decimal.Decimal, reqs []AllocationRequest) ([]expense.SegmentAllocation, error) {
	inputs := make([]expense.AllocationInput, len(reqs))
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		inputs[i] = expense.AllocationInput{
			SegmentID:   r.SegmentID,
			Percentage:  r.Percentage,
			Description: r.Description,
		}
		ids[i] = r.SegmentID
	}

	allocations, err := expense.BuildAllocations(total, inputs)
	if err != nil {
		return nil, err
	}

	ok, err := s.segmentRepo.ExistsAllActive(ctx, ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "One or more segments do not exist or are inactive")
	}
	return allocations, nil
}

// Create creates a new expense in DRAFT status and records the creation
// in the workflow history.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	allocations, err := s.buildAllocations(ctx, req.TotalAmount, req.Allocations)
	if err != nil {
		return nil, err
	}

	exp, err := expense.NewExpense(actor, req.ExpenseDate, req.Vendor, req.TotalAmount, req.Currency, req.Description, allocations)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ExpenseRepo().Save(ctx, exp); err != nil {
			return err
		}
		entry, err := workflow.NewHistory(exp.ID, nil, expense.StatusDraft, actor, "Expense created")
		if err != nil {
			return err
		}
		return repos.HistoryRepo().Record(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, exp)
	s.logger.Info("expense created",
		zap.String("expense_id", exp.ID.String()),
		zap.String("submitter_id", actor.String()))

	return toExpenseResponse(exp), nil
}

// Get returns an expense by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// Update replaces the expense's editable fields and allocation set.
// Editing a rejected expense moves it back to draft and records that
// transition in the workflow history.
func (s *Service) Update(ctx context.Context, id, actor uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	allocations, err := s.buildAllocations(ctx, req.TotalAmount, req.Allocations)
	if err != nil {
		return nil, err
	}

	prior, err := exp.ReplaceAllocations(req.TotalAmount, allocations)
	if err != nil {
		return nil, err
	}
	exp.ExpenseDate = req.ExpenseDate
	exp.Vendor = req.Vendor
	exp.Description = req.Description

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ExpenseRepo().SaveWithLock(ctx, exp); err != nil {
			return err
		}
		if prior == expense.StatusRejected {
			entry, err := workflow.NewHistory(exp.ID, &prior, expense.StatusDraft, actor, "Expense edited after rejection")
			if err != nil {
				return err
			}
			return repos.HistoryRepo().Record(ctx, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toExpenseResponse(exp), nil
}

// Submit moves the expense from DRAFT to SUBMITTED
func (s *Service) Submit(ctx context.Context, id, actor uuid.UUID) (*ExpenseResponse, error) {
	return s.transition(ctx, id, actor, "Submitted for approval", func(exp *expense.Expense) error {
		return exp.Submit(actor)
	}, nil)
}

// Approve moves the expense from SUBMITTED to APPROVED and applies
// budget consumption in the same transaction.
func (s *Service) Approve(ctx context.Context, id, actor uuid.UUID) (*ExpenseResponse, error) {
	return s.transition(ctx, id, actor, "Approved", func(exp *expense.Expense) error {
		return exp.Approve(actor)
	}, s.tracker.Apply)
}

// Reject moves the expense from SUBMITTED to REJECTED with a reason
func (s *Service) Reject(ctx context.Context, id, actor uuid.UUID, reason string) (*ExpenseResponse, error) {
	return s.transition(ctx, id, actor, reason, func(exp *expense.Expense) error {
		return exp.Reject(actor, reason)
	}, nil)
}

// MarkPaid moves the expense from APPROVED to PAID
func (s *Service) MarkPaid(ctx context.Context, id, actor uuid.UUID, paymentReference string) (*ExpenseResponse, error) {
	return s.transition(ctx, id, actor, "Marked as paid", func(exp *expense.Expense) error {
		return exp.MarkPaid(actor, paymentReference)
	}, nil)
}

// transition runs one lifecycle transition: mutate the aggregate, save
// with an optimistic lock, write exactly one history record, and apply
// any budget effect, all in one transaction.
func (s *Service) transition(
	ctx context.Context,
	id, actor uuid.UUID,
	comment string,
	mutate func(exp *expense.Expense) error,
	budgetEffect func(ctx context.Context, repos TransactionalRepositories, exp *expense.Expense) error,
) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	from := exp.Status
	if err := mutate(exp); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ExpenseRepo().SaveWithLock(ctx, exp); err != nil {
			return err
		}
		entry, err := workflow.NewHistory(exp.ID, &from, exp.Status, actor, comment)
		if err != nil {
			return err
		}
		if err := repos.HistoryRepo().Record(ctx, entry); err != nil {
			return err
		}
		if budgetEffect != nil {
			return budgetEffect(ctx, repos, exp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, exp)
	s.logger.Info("expense transitioned",
		zap.String("expense_id", exp.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", exp.Status.String()),
		zap.String("actor_id", actor.String()))

	return toExpenseResponse(exp), nil
}

// Delete soft-deletes an editable expense
func (s *Service) Delete(ctx context.Context, id, actor uuid.UUID) error {
	exp, err := s.findExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := exp.Delete(); err != nil {
		return err
	}
	if err := s.expenseRepo.SaveWithLock(ctx, exp); err != nil {
		return err
	}
	s.logger.Info("expense deleted",
		zap.String("expense_id", id.String()),
		zap.String("actor_id", actor.String()))
	return nil
}

// AttachDocument records document metadata against an expense
func (s *Service) AttachDocument(ctx context.Context, id, actor uuid.UUID, fileName, fileType string, fileSize int64, storagePath string) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := expense.NewDocument(fileName, fileType, fileSize, storagePath, actor)
	if err != nil {
		return nil, err
	}
	exp.AddDocument(doc)

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// List returns expenses matching the filter with a total count
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := expense.Filter{
		SubmitterID: filter.SubmitterID,
		FromDate:    filter.FromDate,
		ToDate:      filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status, err := expense.ParseStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = &status
	}

	expenses, err := s.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = *toExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

// ListPendingApprovals returns submitted expenses awaiting a decision,
// oldest submission first.
func (s *Service) ListPendingApprovals(ctx context.Context) ([]ExpenseResponse, error) {
	expenses, err := s.expenseRepo.FindPendingApprovals(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = *toExpenseResponse(&expenses[i])
	}
	return responses, nil
}

func (s *Service) findExpense(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	exp, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Expense not found")
	}
	return exp, nil
}

func (s *Service) publishEvents(ctx context.Context, exp *expense.Expense) {
	events := exp.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish expense events",
			zap.String("expense_id", exp.ID.String()),
			zap.Error(err))
	}
	exp.ClearDomainEvents()
}

func toExpenseResponse(exp *expense.Expense) *ExpenseResponse {
	allocations := make([]AllocationResponse, len(exp.Allocations))
	for i, a := range exp.Allocations {
		allocations[i] = AllocationResponse{
			ID:          a.ID,
			SegmentID:   a.SegmentID,
			Amount:      a.Amount,
			Percentage:  a.Percentage,
			Description: a.Description,
		}
	}
	documents := make([]DocumentResponse, len(exp.Documents))
	for i, d := range exp.Documents {
		documents[i] = DocumentResponse{
			ID:         d.ID,
			FileName:   d.FileName,
			FileType:   d.FileType,
			FileSize:   d.FileSize,
			UploadedBy: d.UploadedBy,
			CreatedAt:  d.CreatedAt,
		}
	}
	return &ExpenseResponse{
		ID:               exp.ID,
		SubmitterID:      exp.SubmitterID,
		ExpenseDate:      exp.ExpenseDate,
		Vendor:           exp.Vendor,
		TotalAmount:      exp.TotalAmount,
		Currency:         exp.Currency,
		Description:      exp.Description,
		Status:           exp.Status.String(),
		SubmissionDate:   exp.SubmissionDate,
		ApprovalDate:     exp.ApprovalDate,
		PaymentDate:      exp.PaymentDate,
		PaymentReference: exp.PaymentReference,
		RejectionReason:  exp.RejectionReason,
		Allocations:      allocations,
		Documents:        documents,
		CreatedAt:        exp.CreatedAt,
		UpdatedAt:        exp.UpdatedAt,
		Version:          exp.Version,
	}
}
