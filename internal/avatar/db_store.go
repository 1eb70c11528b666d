package avatar

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/redmonkez12/task-manager-api/internal/user"
)

// DBStore keeps avatars in the users.avatar column
type DBStore struct {
	users *user.Repository
}

func NewDBStore(users *user.Repository) *DBStore {
	return &DBStore{users: users}
}

func (s *DBStore) Put(ctx context.Context, userID uuid.UUID, data []byte) error {
	return s.users.SetAvatar(ctx, userID, data)
}

func (s *DBStore) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	data, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrNoAvatar) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *DBStore) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.users.ClearAvatar(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil
	}
	return err
}
