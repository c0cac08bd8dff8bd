package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/expenseflow/backend/internal/domain/shared"
)

// baseOrderColumns are sortable on every table
var baseOrderColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// normalizeFilter fills in defaults for zero-valued filter fields
func normalizeFilter(f *shared.Filter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 200 {
		f.PageSize = 200
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
}

// applyOrdering applies a whitelisted ORDER BY clause. Columns outside
// the allowed set fall back to created_at.
func applyOrdering(query *gorm.DB, f shared.Filter, allowed map[string]bool) *gorm.DB {
	column := f.OrderBy
	if !baseOrderColumns[column] && !allowed[column] {
		column = "created_at"
	}
	return query.Order(fmt.Sprintf("%s %s", column, f.OrderDir))
}

// applyPagination applies LIMIT and OFFSET from a normalized filter
func applyPagination(query *gorm.DB, f shared.Filter) *gorm.DB {
	offset := (f.Page - 1) * f.PageSize
	return query.Offset(offset).Limit(f.PageSize)
}
