package workflow

import (
	"strings"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Comment is a free-form discussion note attached to an expense,
// separate from the approval audit trail.
type Comment struct {
	shared.BaseEntity
	ExpenseID uuid.UUID `json:"expense_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Text      string    `json:"text"`
}

func NewComment(expenseID, author uuid.UUID, text string) (*Comment, error) {
	if expenseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Comment expense is required")
	}
	if author == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Comment author is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Comment text cannot be empty")
	}
	return &Comment{
		BaseEntity: shared.NewBaseEntity(),
		ExpenseID:  expenseID,
		AuthorID:   author,
		Text:       text,
	}, nil
}

// Edit replaces the comment text. Only the author may edit.
func (c *Comment) Edit(actor uuid.UUID, text string) error {
	if actor != c.AuthorID {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Only the author can edit a comment")
	}
	if strings.TrimSpace(text) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Comment text cannot be empty")
	}
	c.Text = text
	return nil
}
