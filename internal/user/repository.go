package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/task-manager-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNoAvatar       = errors.New("avatar not set")
)

// Repository handles user, session and avatar persistence.
// It accepts bun.IDB so the same code runs inside a transaction.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// WithDB returns a repository bound to db, typically a bun.Tx
func (r *Repository) WithDB(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. ID and timestamps are assigned when unset.
func (r *Repository) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	dbUser := mapModelToDBUser(u)
	_, err := r.db.NewInsert().
		Model(dbUser).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		ExcludeColumn("avatar").
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		ExcludeColumn("avatar").
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Update persists the profile fields and password hash of u
func (r *Repository) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()

	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("name = ?", u.Name).
		Set("email = ?", u.Email).
		Set("age = ?", u.Age).
		Set("password_hash = ?", u.PasswordHash).
		Set("updated_at = ?", u.UpdatedAt).
		Where("id = ?", u.ID).
		Exec(ctx)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectOneRow(result)
}

// Delete removes the user row. Sessions and tasks must be removed first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectOneRow(result)
}

// AddSession stores the hash of a newly issued token
func (r *Repository) AddSession(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	session := &database.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return fmt.Errorf("failed to add session: %w", err)
	}

	return nil
}

// HasSession reports whether tokenHash is an active session of the user
func (r *Repository) HasSession(ctx context.Context, userID uuid.UUID, tokenHash string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.Session)(nil)).
		Where("user_id = ?", userID).
		Where("token_hash = ?", tokenHash).
		Exists(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}

	return exists, nil
}

// RemoveSession deletes one session. Removing an absent session is not an error.
func (r *Repository) RemoveSession(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	_, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("user_id = ?", userID).
		Where("token_hash = ?", tokenHash).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

// ClearSessions deletes every session of the user
func (r *Repository) ClearSessions(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	return nil
}

// ListSessions returns the stored token hashes of the user, oldest first
func (r *Repository) ListSessions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var hashes []string
	err := r.db.NewSelect().
		Model((*database.Session)(nil)).
		Column("token_hash").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx, &hashes)

	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return hashes, nil
}

// SetAvatar replaces the stored avatar bytes
func (r *Repository) SetAvatar(ctx context.Context, userID uuid.UUID, data []byte) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("avatar = ?", data).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}

	return expectOneRow(result)
}

// GetAvatar returns the avatar bytes. ErrNotFound is returned for an
// unknown user and ErrNoAvatar when the user has none.
func (r *Repository) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var data []byte
	err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Column("avatar").
		Where("id = ?", userID).
		Scan(ctx, &data)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrNoAvatar
	}

	return data, nil
}

// ClearAvatar removes the avatar. Clearing an absent avatar is not an error.
func (r *Repository) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("avatar = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}

	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Name:         dbu.Name,
		Email:        dbu.Email,
		Age:          dbu.Age,
		PasswordHash: dbu.PasswordHash,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}

func mapModelToDBUser(u *User) *database.User {
	return &database.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Age:          u.Age,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
