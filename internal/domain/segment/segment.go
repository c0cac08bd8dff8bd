package segment

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies what a segment represents
type Type string

const (
	TypeCostCenter Type = "COST_CENTER"
	TypeProject    Type = "PROJECT"
	TypeCategory   Type = "CATEGORY"
	TypeCustom     Type = "CUSTOM"
)

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypeCostCenter, TypeProject, TypeCategory, TypeCustom:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// ParseType parses a string into a Type, returning a domain error for
// unknown values.
func ParseType(value string) (Type, error) {
	t := Type(value)
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid segment type", value))
	}
	return t, nil
}

// Segment is a chargeable dimension expenses are allocated against:
// a cost center, project, category or custom grouping. Segments may
// nest one level or more via ParentID.
type Segment struct {
	shared.BaseEntity
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Type        Type       `json:"type"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	IsActive    bool       `json:"is_active"`
}

// NewSegment creates an active segment
func NewSegment(name, code string, segType Type, description string, parentID *uuid.UUID) (*Segment, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Segment name is required")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Segment code is required")
	}
	if !segType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENUM_VALUE",
			fmt.Sprintf("'%s' is not a valid segment type", segType))
	}
	return &Segment{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Code:        code,
		Type:        segType,
		Description: description,
		ParentID:    parentID,
		IsActive:    true,
	}, nil
}

// Update changes the descriptive fields of the segment
func (s *Segment) Update(name, description string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Segment name is required")
	}
	s.Name = name
	s.Description = description
	s.UpdatedAt = time.Now()
	return nil
}

// Activate makes the segment selectable for new allocations
func (s *Segment) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
}

// Deactivate hides the segment from new allocations; existing
// allocations keep referencing it.
func (s *Segment) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}
