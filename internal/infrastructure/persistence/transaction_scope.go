package persistence

import (
	"context"

	"gorm.io/gorm"

	expenseapp "github.com/expenseflow/backend/internal/application/expense"
	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/workflow"
)

// GormTransactionScope implements the application transaction scope over
// a gorm transaction. Repositories handed to the callback are bound to
// the transaction connection, so every write inside the callback commits
// or rolls back as a unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a transaction scope over the database
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos expenseapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx})
	})
}

// txRepositories builds repositories bound to one transaction
type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) ExpenseRepo() expense.Repository {
	return NewGormExpenseRepository(r.tx)
}

func (r *txRepositories) HistoryRepo() workflow.HistoryRepository {
	return NewGormHistoryRepository(r.tx)
}

func (r *txRepositories) BudgetRepo() budget.Repository {
	return NewGormBudgetRepository(r.tx)
}
