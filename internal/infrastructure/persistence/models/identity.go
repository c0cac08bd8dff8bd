package models

import (
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for User. Role membership lives in
// the user_roles join table.
type UserModel struct {
	BaseModel
	Email        string      `gorm:"size:255;not null;uniqueIndex"`
	FullName     string      `gorm:"size:200;not null"`
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index"`
	IsActive     bool        `gorm:"not null;default:true"`
	Roles        []RoleModel `gorm:"many2many:user_roles"`
}

// TableName returns the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// RoleModel is the persistence model for Role
type RoleModel struct {
	BaseModel
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for RoleModel
func (RoleModel) TableName() string {
	return "roles"
}

// DepartmentModel is the persistence model for Department
type DepartmentModel struct {
	BaseModel
	Name      string     `gorm:"size:200;not null;uniqueIndex"`
	ManagerID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for DepartmentModel
func (DepartmentModel) TableName() string {
	return "departments"
}

// ToDomain converts UserModel to the domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		FullName:     m.FullName,
		DepartmentID: m.DepartmentID,
		IsActive:     m.IsActive,
	}
	u.RoleIDs = make([]uuid.UUID, len(m.Roles))
	for i, r := range m.Roles {
		u.RoleIDs[i] = r.ID
	}
	return u
}

// UserModelFromDomain converts a domain User to its persistence model.
// Role membership is written separately through the join table.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		FullName:     u.FullName,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

// ToDomain converts RoleModel to the domain Role
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
	}
}

// RoleModelFromDomain converts a domain Role to its persistence model
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{
		Name:        r.Name,
		Description: r.Description,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// ToDomain converts DepartmentModel to the domain Department
func (m *DepartmentModel) ToDomain() *identity.Department {
	return &identity.Department{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		ManagerID:  m.ManagerID,
	}
}

// DepartmentModelFromDomain converts a domain Department to its persistence model
func DepartmentModelFromDomain(d *identity.Department) *DepartmentModel {
	m := &DepartmentModel{
		Name:      d.Name,
		ManagerID: d.ManagerID,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
