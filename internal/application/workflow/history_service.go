package workflow

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
)

// HistoryService reads the status transition audit trail. Writes happen
// inside expense lifecycle transactions, not here.
type HistoryService struct {
	historyRepo workflow.HistoryRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(historyRepo workflow.HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// HistoryResponse represents one status transition in API responses
type HistoryResponse struct {
	ID         uuid.UUID `json:"id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	Comment    string    `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ListByExpense returns the transition trail for an expense, oldest
// first.
func (s *HistoryService) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]HistoryResponse, error) {
	entries, err := s.historyRepo.FindByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	responses := make([]HistoryResponse, len(entries))
	for i, e := range entries {
		responses[i] = *toHistoryResponse(e)
	}
	return responses, nil
}

// Latest returns the most recent transition for an expense, or nil
func (s *HistoryService) Latest(ctx context.Context, expenseID uuid.UUID) (*HistoryResponse, error) {
	entry, err := s.historyRepo.FindLatestByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return toHistoryResponse(entry), nil
}

// ListByActor returns transitions performed by one user
func (s *HistoryService) ListByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) (shared.Paginated[*HistoryResponse], error) {
	page, err := s.historyRepo.FindByActor(ctx, actorID, filter)
	if err != nil {
		return shared.Paginated[*HistoryResponse]{}, err
	}
	items := make([]*HistoryResponse, len(page.Items))
	for i, e := range page.Items {
		items[i] = toHistoryResponse(e)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// ListSince returns transitions recorded at or after the given time
func (s *HistoryService) ListSince(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*HistoryResponse], error) {
	page, err := s.historyRepo.FindSince(ctx, since, filter)
	if err != nil {
		return shared.Paginated[*HistoryResponse]{}, err
	}
	items := make([]*HistoryResponse, len(page.Items))
	for i, e := range page.Items {
		items[i] = toHistoryResponse(e)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

func toHistoryResponse(e *workflow.History) *HistoryResponse {
	var from *string
	if e.FromStatus != nil {
		v := e.FromStatus.String()
		from = &v
	}
	return &HistoryResponse{
		ID:         e.ID,
		ExpenseID:  e.ExpenseID,
		FromStatus: from,
		ToStatus:   e.ToStatus.String(),
		ActorID:    e.ActorID,
		Comment:    e.Comment,
		Timestamp:  e.Timestamp,
	}
}
