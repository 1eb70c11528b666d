package task

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/task-manager-api/internal/httputil"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

// Handler contains HTTP handlers for task endpoints.
// All routes sit behind auth.Middleware.RequireAuth.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles task creation
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateInput true "Task"
// @Success      201 {object} Task
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid task request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	t, err := h.service.Create(r.Context(), owner.ID, in)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, t, http.StatusCreated)
}

// List handles task listing
// @Summary      List own tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        completed query bool   false "Filter by completion"
// @Param        sortBy    query string false "field:asc|desc"
// @Param        limit     query int    false "Maximum number of tasks"
// @Param        skip      query int    false "Number of tasks to skip"
// @Success      200 {array}  Task
// @Failure      400 {object} httputil.ErrorResponse "Invalid query"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	opts, err := ParseListOptions(r.URL.Query())
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	tasks, err := h.service.List(r.Context(), owner.ID, opts)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, tasks, http.StatusOK)
}

// Get handles fetching one task
// @Summary      Get an own task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} Task
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      404 {object} httputil.ErrorResponse "Task not found"
// @Router       /tasks/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, ok := taskID(r)
	if !ok {
		httputil.RespondAppError(w, r, ErrNotFound)
		return
	}

	t, err := h.service.Get(r.Context(), owner.ID, id)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// Update handles partial task updates
// @Summary      Update an own task
// @Description  Only description and completed may be changed; any other key rejects the request.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} Task
// @Failure      400 {object} httputil.ErrorResponse "Invalid update"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      404 {object} httputil.ErrorResponse "Task not found"
// @Router       /tasks/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid task patch body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	id, ok := taskID(r)
	if !ok {
		httputil.RespondAppError(w, r, ErrNotFound)
		return
	}

	t, err := h.service.Update(r.Context(), owner.ID, id, patch)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// Delete handles task removal
// @Summary      Delete an own task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} Task
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      404 {object} httputil.ErrorResponse "Task not found"
// @Router       /tasks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, ok := taskID(r)
	if !ok {
		httputil.RespondAppError(w, r, ErrNotFound)
		return
	}

	t, err := h.service.Delete(r.Context(), owner.ID, id)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, t, http.StatusOK)
}

// taskID parses the {id} route parameter. Malformed ids cannot name an
// owned task, so callers report them as not found.
func taskID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func currentUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondUnauthenticated(w)
	}
	return u, ok
}
