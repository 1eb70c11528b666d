package task

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/task-manager-api/internal/apperror"
	"github.com/redmonkez12/task-manager-api/internal/database/dbtest"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.New(t))
	return NewService(repo), repo
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func patchOf(t *testing.T, v map[string]any) map[string]json.RawMessage {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)

	var patch map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &patch))
	return patch
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Description: "  buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, owner, task.OwnerID)
	assert.NotEqual(t, uuid.Nil, task.ID)

	done, err := svc.Create(ctx, owner, CreateInput{Description: "done", Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, done.Completed)
}

func TestService_CreateRequiresDescription(t *testing.T) {
	svc, _ := newTestService(t)

	for _, description := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), uuid.New(), CreateInput{Description: description})
		require.ErrorIs(t, err, ErrDescriptionRequired)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
}

func TestService_CompletedFilterScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Description: "buy milk"})
	require.NoError(t, err)

	completed := ListOptions{Completed: boolPtr(true)}

	tasks, err := svc.List(ctx, owner, completed)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = svc.Update(ctx, owner, task.ID, patchOf(t, map[string]any{"completed": true}))
	require.NoError(t, err)

	tasks, err = svc.List(ctx, owner, completed)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.True(t, tasks[0].Completed)
}

func TestService_ListScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	alice, bob := uuid.New(), uuid.New()

	for _, d := range []string{"c", "a", "b"} {
		_, err := svc.Create(ctx, alice, CreateInput{Description: d})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := svc.Create(ctx, bob, CreateInput{Description: "bob's"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, alice, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, descriptions(tasks), "default order is creation ascending")

	tasks, err = svc.List(ctx, alice, ListOptions{Sort: &Sort{Column: "description"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, descriptions(tasks))

	tasks, err = svc.List(ctx, alice, ListOptions{Sort: &Sort{Column: "created_at", Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, descriptions(tasks))
}

func TestService_ListPagination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := uuid.New()

	for _, d := range []string{"a", "b", "c", "d", "e"} {
		_, err := svc.Create(ctx, owner, CreateInput{Description: d})
		require.NoError(t, err)
	}
	byDescription := &Sort{Column: "description"}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "unbounded", opts: ListOptions{Sort: byDescription}, want: []string{"a", "b", "c", "d", "e"}},
		{name: "limit", opts: ListOptions{Sort: byDescription, Limit: intPtr(2)}, want: []string{"a", "b"}},
		{name: "limit zero is unbounded", opts: ListOptions{Sort: byDescription, Limit: intPtr(0)}, want: []string{"a", "b", "c", "d", "e"}},
		{name: "skip without limit", opts: ListOptions{Sort: byDescription, Skip: intPtr(3)}, want: []string{"d", "e"}},
		{name: "limit and skip", opts: ListOptions{Sort: byDescription, Limit: intPtr(2), Skip: intPtr(1)}, want: []string{"b", "c"}},
		{name: "skip past end", opts: ListOptions{Sort: byDescription, Skip: intPtr(10)}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.List(ctx, owner, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(tasks))
		})
	}
}

func TestService_OwnershipIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	alice, bob := uuid.New(), uuid.New()

	task, err := svc.Create(ctx, alice, CreateInput{Description: "private"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, bob, task.ID, patchOf(t, map[string]any{"completed": true}))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, "private", got.Description)
}

func TestService_UpdateRejectsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Description: "buy milk"})
	require.NoError(t, err)

	for _, patch := range []map[string]any{
		{"foo": 1},
		{"completed": true, "owner": uuid.NewString()},
		{"description": "changed", "id": "x"},
	} {
		_, err := svc.Update(ctx, owner, task.ID, patchOf(t, patch))
		require.ErrorIs(t, err, ErrInvalidUpdate)
		assert.Equal(t, apperror.KindInvalidUpdate, apperror.KindOf(err))
	}

	got, err := repo.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Description)
	assert.False(t, got.Completed)
	assert.Equal(t, task.UpdatedAt.Unix(), got.UpdatedAt.Unix())
}

func TestService_UpdateValidatesValues(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Description: "buy milk"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, task.ID, patchOf(t, map[string]any{"description": ""}))
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	_, err = svc.Update(ctx, owner, task.ID, patchOf(t, map[string]any{"description": 5}))
	assert.ErrorIs(t, err, ErrInvalidDescription)

	_, err = svc.Update(ctx, owner, task.ID, patchOf(t, map[string]any{"completed": "yes"}))
	assert.ErrorIs(t, err, ErrInvalidCompleted)

	_, err = svc.Update(ctx, owner, task.ID, patchOf(t, map[string]any{"completed": nil}))
	assert.ErrorIs(t, err, ErrInvalidCompleted)

	updated, err := svc.Update(ctx, owner, task.ID, patchOf(t, map[string]any{"description": " buy oat milk ", "completed": true}))
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", updated.Description)
	assert.True(t, updated.Completed)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Description: "buy milk"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = svc.Get(ctx, owner, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(ctx, owner, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_DeleteByOwner(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	alice, bob := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, alice, CreateInput{Description: "alice"})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, CreateInput{Description: "bob"})
	require.NoError(t, err)

	n, err := repo.DeleteByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, err := repo.CountByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountByOwner(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func descriptions(tasks []*Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Description)
	}
	return out
}
