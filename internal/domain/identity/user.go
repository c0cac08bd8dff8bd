package identity

import (
	"strings"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// User is a collaborator who submits or approves expenses. Identity is
// deliberately thin; authentication lives outside this service and the
// acting user arrives on each request.
type User struct {
	shared.BaseEntity
	Email        string      `json:"email"`
	FullName     string      `json:"full_name"`
	DepartmentID *uuid.UUID  `json:"department_id"`
	RoleIDs      []uuid.UUID `json:"role_ids"`
	IsActive     bool        `json:"is_active"`
}

// NewUser creates an active user
func NewUser(email, fullName string, departmentID *uuid.UUID) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_INPUT", "A valid email is required")
	}
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Full name is required")
	}
	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		FullName:     fullName,
		DepartmentID: departmentID,
		IsActive:     true,
	}, nil
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// AssignRole grants a role; assigning a held role is a no-op
func (u *User) AssignRole(roleID uuid.UUID) {
	if u.HasRole(roleID) {
		return
	}
	u.RoleIDs = append(u.RoleIDs, roleID)
	u.UpdatedAt = time.Now()
}

// RevokeRole removes a role from the user
func (u *User) RevokeRole(roleID uuid.UUID) {
	for i, id := range u.RoleIDs {
		if id == roleID {
			u.RoleIDs = append(u.RoleIDs[:i], u.RoleIDs[i+1:]...)
			u.UpdatedAt = time.Now()
			return
		}
	}
}

// Role is a named approval capability, e.g. "Finance Approver"
type Role struct {
	shared.BaseEntity
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewRole creates a role
func NewRole(name, description string) (*Role, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Role name is required")
	}
	return &Role{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
	}, nil
}

// Department groups users for department-scoped budgets
type Department struct {
	shared.BaseEntity
	Name      string     `json:"name"`
	ManagerID *uuid.UUID `json:"manager_id"`
}

// NewDepartment creates a department
func NewDepartment(name string, managerID *uuid.UUID) (*Department, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Department name is required")
	}
	return &Department{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		ManagerID:  managerID,
	}, nil
}
