package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
)

var userOrderColumns = map[string]bool{
	"email":     true,
	"full_name": true,
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID with role membership
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Preload("Roles").First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Preload("Roles").First(&model, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds users matching the filter with pagination
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*identity.User], error) {
	normalizeFilter(&filter)

	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email LIKE ? OR full_name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*identity.User]{}, fmt.Errorf("failed to count users: %w", err)
	}

	query = applyOrdering(query, filter, userOrderColumns)
	query = applyPagination(query, filter)

	var rows []models.UserModel
	if err := query.Preload("Roles").Find(&rows).Error; err != nil {
		return shared.Paginated[*identity.User]{}, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return shared.NewPaginated(users, total, filter.Page, filter.PageSize), nil
}

// FindByRole finds users holding a role
func (r *GormUserRepository) FindByRole(ctx context.Context, roleID uuid.UUID) ([]*identity.User, error) {
	var rows []models.UserModel
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Joins("JOIN user_roles ON user_roles.user_model_id = users.id").
		Where("user_roles.role_model_id = ?", roleID).
		Order("email asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, nil
}

// HasRole reports whether a user holds a role
func (r *GormUserRepository) HasRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("user_roles").
		Where("user_model_id = ? AND role_model_id = ?", userID, roleID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role membership: %w", err)
	}
	return count > 0, nil
}

// Save persists a user and rewrites role membership
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.UserModelFromDomain(u)
		if err := tx.Save(model).Error; err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		roles := make([]models.RoleModel, len(u.RoleIDs))
		for i, roleID := range u.RoleIDs {
			roles[i] = models.RoleModel{BaseModel: models.BaseModel{ID: roleID}}
		}
		if err := tx.Model(model).Association("Roles").Replace(roles); err != nil {
			return fmt.Errorf("failed to save role membership: %w", err)
		}
		return nil
	})
}

// GormRoleRepository implements identity.RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GORM role repository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a role by name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	var model models.RoleModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find role by name: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll lists all roles
func (r *GormRoleRepository) FindAll(ctx context.Context) ([]*identity.Role, error) {
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	roles := make([]*identity.Role, len(rows))
	for i := range rows {
		roles[i] = rows[i].ToDomain()
	}
	return roles, nil
}

// Save persists a role
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	model := models.RoleModelFromDomain(role)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

// GormDepartmentRepository implements identity.DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewGormDepartmentRepository creates a new GORM department repository
func NewGormDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// FindByID finds a department by ID
func (r *GormDepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Department, error) {
	var model models.DepartmentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll lists all departments
func (r *GormDepartmentRepository) FindAll(ctx context.Context) ([]*identity.Department, error) {
	var rows []models.DepartmentModel
	if err := r.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	departments := make([]*identity.Department, len(rows))
	for i := range rows {
		departments[i] = rows[i].ToDomain()
	}
	return departments, nil
}

// Save persists a department
func (r *GormDepartmentRepository) Save(ctx context.Context, d *identity.Department) error {
	model := models.DepartmentModelFromDomain(d)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save department: %w", err)
	}
	return nil
}
