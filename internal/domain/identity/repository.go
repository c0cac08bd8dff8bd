package identity

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*User], error)
	FindByRole(ctx context.Context, roleID uuid.UUID) ([]*User, error)
	HasRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	Save(ctx context.Context, user *User) error
}

// RoleRepository persists roles
type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindAll(ctx context.Context) ([]*Role, error)
	Save(ctx context.Context, role *Role) error
}

// DepartmentRepository persists departments
type DepartmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Department, error)
	FindAll(ctx context.Context) ([]*Department, error)
	Save(ctx context.Context, department *Department) error
}
