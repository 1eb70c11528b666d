package task

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Service implements owner-scoped task operations
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, in CreateInput) (*Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	t := &Task{
		Description: description,
		OwnerID:     owner,
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) List(ctx context.Context, owner uuid.UUID, opts ListOptions) ([]*Task, error) {
	return s.repo.List(ctx, owner, opts)
}

// Get returns ErrNotFound for unknown ids and for tasks of other owners alike
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	return s.repo.Get(ctx, owner, id)
}

// Update applies a patch restricted to description and completed. Any
// other key rejects the whole patch before the task is loaded.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, patch map[string]json.RawMessage) (*Task, error) {
	var description *string
	var completed *bool

	for key := range patch {
		switch key {
		case "description", "completed":
		default:
			return nil, ErrInvalidUpdate
		}
	}

	if raw, ok := patch["description"]; ok {
		var v string
		if isNull(raw) || json.Unmarshal(raw, &v) != nil {
			return nil, ErrInvalidDescription
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, ErrDescriptionRequired
		}
		description = &v
	}

	if raw, ok := patch["completed"]; ok {
		var v bool
		if isNull(raw) || json.Unmarshal(raw, &v) != nil {
			return nil, ErrInvalidCompleted
		}
		completed = &v
	}

	t, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if description != nil {
		t.Description = *description
	}
	if completed != nil {
		t.Completed = *completed
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Delete removes an owned task and returns it as it was
func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	t, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return nil, err
	}

	return t, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
