// Package account implements registration, login, sessions and profile
// management on top of the user store.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/task-manager-api/internal/auth"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/task"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

// Notifier sends account lifecycle emails without blocking the caller
type Notifier interface {
	NotifyWelcome(to, name string)
	NotifyCancellation(to, name string)
}

// AvatarRemover clears avatars kept outside the users table
type AvatarRemover interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RegisterInput is the body of POST /users
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      *int   `json:"age,omitempty"`
	Password string `json:"password"`
}

// Service handles account business logic
type Service struct {
	db       bun.IDB
	users    *user.Repository
	tasks    *task.Repository
	sessions *auth.Sessions
	hasher   *auth.PasswordHasher
	notifier Notifier
	avatars  AvatarRemover
	validate *validator.Validate
	logger   *logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(
	db bun.IDB,
	users *user.Repository,
	tasks *task.Repository,
	sessions *auth.Sessions,
	hasher *auth.PasswordHasher,
	notifier Notifier,
	avatars AvatarRemover,
	logger *logging.Logger,
) *Service {
	return &Service{
		db:       db,
		users:    users,
		tasks:    tasks,
		sessions: sessions,
		hasher:   hasher,
		notifier: notifier,
		avatars:  avatars,
		validate: newValidator(),
		logger:   logger,
	}
}

// Register creates a user and their first session in one transaction, then
// queues the welcome email
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, string, error) {
	p := profile{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	p.normalize()

	if err := validateProfile(s.validate, &p, true); err != nil {
		return nil, "", err
	}

	passwordHash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &user.User{
		Name:         p.Name,
		Email:        p.Email,
		Age:          p.Age,
		PasswordHash: passwordHash,
	}
	var token string
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := s.users.WithDB(tx)
		if err := users.Create(ctx, newUser); err != nil {
			return err
		}

		var err error
		token, err = s.sessions.WithStore(users).Issue(ctx, newUser.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", err
	}

	s.notifier.NotifyWelcome(newUser.Email, newUser.Name)

	return newUser, token, nil
}

// Authenticate checks credentials. Unknown email and wrong password both
// return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	p := profile{Email: email, Password: password}
	p.normalize()

	u, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// spend the same hashing time as a real check
			s.hasher.Verify(s.dummyPasswordHash(), p.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(u.PasswordHash, p.Password) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Login authenticates and issues a new session token
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Logout revokes the session of token only
func (s *Service) Logout(ctx context.Context, u *user.User, token string) error {
	return s.sessions.Revoke(ctx, u.ID, token)
}

// LogoutAll revokes every session of the user
func (s *Service) LogoutAll(ctx context.Context, u *user.User) error {
	return s.sessions.RevokeAll(ctx, u.ID)
}

// Update applies a profile patch. Allowed keys are name, email, password
// and age; any other key rejects the whole patch.
func (s *Service) Update(ctx context.Context, u *user.User, patch map[string]json.RawMessage) (*user.User, error) {
	for key := range patch {
		switch key {
		case "name", "email", "password", "age":
		default:
			return nil, ErrInvalidUpdate
		}
	}

	p := profile{Name: u.Name, Email: u.Email, Age: u.Age}
	if err := decodeField(patch, "name", &p.Name); err != nil {
		return nil, err
	}
	if err := decodeField(patch, "email", &p.Email); err != nil {
		return nil, err
	}
	if err := decodeField(patch, "password", &p.Password); err != nil {
		return nil, err
	}
	if err := decodeField(patch, "age", &p.Age); err != nil {
		return nil, err
	}
	p.normalize()

	_, passwordChanged := patch["password"]
	if err := validateProfile(s.validate, &p, passwordChanged); err != nil {
		return nil, err
	}

	updated := *u
	updated.Name = p.Name
	updated.Email = p.Email
	updated.Age = p.Age
	if passwordChanged {
		passwordHash, err := s.hasher.Hash(p.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = passwordHash
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &updated, nil
}

// Delete removes the user together with their tasks and sessions in one
// transaction, then queues the cancellation email and removes the avatar.
func (s *Service) Delete(ctx context.Context, u *user.User) (*user.User, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.tasks.WithDB(tx).DeleteByOwner(ctx, u.ID); err != nil {
			return err
		}
		users := s.users.WithDB(tx)
		if err := users.ClearSessions(ctx, u.ID); err != nil {
			return err
		}
		return users.Delete(ctx, u.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}

	s.notifier.NotifyCancellation(u.Email, u.Name)

	if s.avatars != nil {
		if err := s.avatars.Clear(ctx, u.ID); err != nil {
			s.logger.Warn("failed to remove avatar of deleted user", "user_id", u.ID, "error", err.Error())
		}
	}

	return u, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not a real password")
	})
	return s.dummyHash
}

func decodeField[T any](patch map[string]json.RawMessage, key string, dst *T) error {
	raw, ok := patch[key]
	if !ok {
		return nil
	}
	if string(raw) == "null" || json.Unmarshal(raw, dst) != nil {
		return ErrInvalidFieldValue
	}
	return nil
}
