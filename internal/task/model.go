package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput is the body of POST /tasks
type CreateInput struct {
	Description string `json:"description"`
	Completed   *bool  `json:"completed,omitempty"`
}

// Sort orders a listing by a whitelisted column
type Sort struct {
	Column string
	Desc   bool
}

// ListOptions filters and pages a listing. Nil fields are unbounded.
type ListOptions struct {
	Completed *bool
	Sort      *Sort
	Limit     *int
	Skip      *int
}
