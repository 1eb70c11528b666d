package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted credential record
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	Age          int       `bun:"age,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Avatar       []byte    `bun:"avatar"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// Session is one active bearer token of a user, stored by hash
type Session struct {
	bun.BaseModel `bun:"table:user_sessions,alias:s"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	TokenHash string    `bun:"token_hash,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Task is a unit of work owned by exactly one user
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Description string    `bun:"description,notnull"`
	Completed   bool      `bun:"completed,notnull"`
	OwnerID     uuid.UUID `bun:"owner_id,notnull,type:uuid"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// Models lists every table model in creation order
func Models() []any {
	return []any{
		(*User)(nil),
		(*Session)(nil),
		(*Task)(nil),
	}
}
