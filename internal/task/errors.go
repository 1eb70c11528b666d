package task

import "github.com/redmonkez12/task-manager-api/internal/apperror"

var (
	ErrNotFound            = apperror.NotFound("TASK_NOT_FOUND", "task not found")
	ErrInvalidUpdate       = apperror.New(apperror.KindInvalidUpdate, "INVALID_UPDATE", "invalid update request")
	ErrDescriptionRequired = apperror.Validation("DESCRIPTION_REQUIRED", "description is required")
	ErrInvalidDescription  = apperror.Validation("INVALID_DESCRIPTION", "description must be a string")
	ErrInvalidCompleted    = apperror.Validation("INVALID_COMPLETED", "completed must be a boolean")
	ErrInvalidSortField    = apperror.Validation("INVALID_SORT_FIELD", "sortBy field is not sortable")
	ErrNegativeLimit       = apperror.Validation("INVALID_LIMIT", "limit must not be negative")
	ErrNegativeSkip        = apperror.Validation("INVALID_SKIP", "skip must not be negative")
)
