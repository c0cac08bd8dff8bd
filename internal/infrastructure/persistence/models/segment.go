package models

import (
	"github.com/expenseflow/backend/internal/domain/segment"
	"github.com/google/uuid"
)

// SegmentModel is the persistence model for Segment
type SegmentModel struct {
	BaseModel
	Name        string     `gorm:"size:200;not null;index"`
	Code        string     `gorm:"size:50;not null;uniqueIndex"`
	Type        string     `gorm:"size:20;not null;index"`
	Description string     `gorm:"type:text"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	IsActive    bool       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for SegmentModel
func (SegmentModel) TableName() string {
	return "segments"
}

// ToDomain converts SegmentModel to the domain Segment
func (m *SegmentModel) ToDomain() *segment.Segment {
	return &segment.Segment{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Code:        m.Code,
		Type:        segment.Type(m.Type),
		Description: m.Description,
		ParentID:    m.ParentID,
		IsActive:    m.IsActive,
	}
}

// SegmentModelFromDomain converts a domain Segment to its persistence model
func SegmentModelFromDomain(s *segment.Segment) *SegmentModel {
	m := &SegmentModel{
		Name:        s.Name,
		Code:        s.Code,
		Type:        s.Type.String(),
		Description: s.Description,
		ParentID:    s.ParentID,
		IsActive:    s.IsActive,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
