package expense

import (
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document is a receipt or supporting file attached to an expense.
// Only the metadata is tracked here; upload transport lives elsewhere.
type Document struct {
	shared.BaseEntity
	ExpenseID   uuid.UUID `json:"expense_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	StoragePath string    `json:"storage_path"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
}

// NewDocument creates a document metadata record
func NewDocument(fileName, fileType string, fileSize int64, storagePath string, uploadedBy uuid.UUID) (Document, error) {
	if fileName == "" {
		return Document{}, shared.NewDomainError("INVALID_INPUT", "Document file name is required")
	}
	if fileSize < 0 {
		return Document{}, shared.NewDomainError("INVALID_INPUT", "Document file size cannot be negative")
	}
	return Document{
		BaseEntity:  shared.NewBaseEntity(),
		FileName:    fileName,
		FileType:    fileType,
		FileSize:    fileSize,
		StoragePath: storagePath,
		UploadedBy:  uploadedBy,
	}, nil
}
