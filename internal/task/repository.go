package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/task-manager-api/internal/database"
)

// Repository handles task persistence. Every query is scoped by owner.
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

func (r *Repository) Create(ctx context.Context, t *Task) error {
	now := time.Now().UTC()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(mapModelToDBTask(t)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// Get returns the task only if it belongs to owner
func (r *Repository) Get(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	dbTask := new(database.Task)
	err := r.db.NewSelect().
		Model(dbTask).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return mapDBTaskToModel(dbTask), nil
}

// List returns the owner's tasks, oldest first unless opts.Sort says otherwise
func (r *Repository) List(ctx context.Context, owner uuid.UUID, opts ListOptions) ([]*Task, error) {
	var dbTasks []database.Task

	q := r.db.NewSelect().
		Model(&dbTasks).
		Where("owner_id = ?", owner)

	if opts.Completed != nil {
		q = q.Where("completed = ?", *opts.Completed)
	}

	if opts.Sort != nil {
		dir := "ASC"
		if opts.Sort.Desc {
			dir = "DESC"
		}
		q = q.Order(opts.Sort.Column + " " + dir)
	}
	q = q.Order("created_at ASC", "id ASC")

	limited := false
	if opts.Limit != nil && *opts.Limit > 0 {
		q = q.Limit(*opts.Limit)
		limited = true
	}
	if opts.Skip != nil && *opts.Skip > 0 {
		if !limited {
			// OFFSET requires a LIMIT on some engines
			q = q.Limit(math.MaxInt32)
		}
		q = q.Offset(*opts.Skip)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*Task, 0, len(dbTasks))
	for i := range dbTasks {
		tasks = append(tasks, mapDBTaskToModel(&dbTasks[i]))
	}

	return tasks, nil
}

// Update persists description and completed of an owned task
func (r *Repository) Update(ctx context.Context, t *Task) error {
	t.UpdatedAt = time.Now().UTC()

	result, err := r.db.NewUpdate().
		Model((*database.Task)(nil)).
		Set("description = ?", t.Description).
		Set("completed = ?", t.Completed).
		Set("updated_at = ?", t.UpdatedAt).
		Where("id = ?", t.ID).
		Where("owner_id = ?", t.OwnerID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return expectOneRow(result)
}

func (r *Repository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return expectOneRow(result)
}

// DeleteByOwner removes every task of owner and reports how many were removed
func (r *Repository) DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("owner_id = ?", owner).
		Exec(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks of owner: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}

// CountByOwner returns the number of tasks owned by owner
func (r *Repository) CountByOwner(ctx context.Context, owner uuid.UUID) (int, error) {
	n, err := r.db.NewSelect().
		Model((*database.Task)(nil)).
		Where("owner_id = ?", owner).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return n, nil
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

func mapDBTaskToModel(dbt *database.Task) *Task {
	return &Task{
		ID:          dbt.ID,
		Description: dbt.Description,
		Completed:   dbt.Completed,
		OwnerID:     dbt.OwnerID,
		CreatedAt:   dbt.CreatedAt,
		UpdatedAt:   dbt.UpdatedAt,
	}
}

func mapModelToDBTask(t *Task) *database.Task {
	return &database.Task{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
