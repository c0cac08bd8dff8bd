package workflow

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/workflow"
	"github.com/google/uuid"
)

// CommentService manages free-form discussion on expenses
type CommentService struct {
	commentRepo workflow.CommentRepository
	expenseRepo expense.Repository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo workflow.CommentRepository, expenseRepo expense.Repository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		expenseRepo: expenseRepo,
	}
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	ExpenseID uuid.UUID `json:"expense_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Add attaches a comment to an expense
func (s *CommentService) Add(ctx context.Context, expenseID, actor uuid.UUID, text string) (*CommentResponse, error) {
	exp, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Expense not found")
	}

	comment, err := workflow.NewComment(expenseID, actor, text)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

// Edit replaces a comment's text. Only the author may edit.
func (s *CommentService) Edit(ctx context.Context, id, actor uuid.UUID, text string) (*CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Comment not found")
	}
	if err := comment.Edit(actor, text); err != nil {
		return nil, err
	}
	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

// ListByExpense returns an expense's comments, oldest first
func (s *CommentService) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]CommentResponse, error) {
	comments, err := s.commentRepo.FindByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	responses := make([]CommentResponse, len(comments))
	for i, c := range comments {
		responses[i] = *toCommentResponse(c)
	}
	return responses, nil
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, id, actor uuid.UUID) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return shared.NewDomainError("NOT_FOUND", "Comment not found")
	}
	if comment.AuthorID != actor {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Only the author can delete a comment")
	}
	return s.commentRepo.Delete(ctx, id)
}

func toCommentResponse(c *workflow.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        c.ID,
		ExpenseID: c.ExpenseID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
