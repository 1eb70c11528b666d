package avatar

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/task-manager-api/internal/httputil"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

// multipartOverhead leaves room for boundaries and headers around the file
const multipartOverhead = 64 << 10

// Handler contains HTTP handlers for avatar endpoints
type Handler struct {
	service  *Service
	maxBytes int64
}

func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

// Upload handles avatar upload
// @Summary      Upload own avatar
// @Description  Accepts a png, jpg or jpeg file in the "avatar" field; it is stored as a 250x250 PNG.
// @Tags         users
// @Accept       mpfd
// @Security     BearerAuth
// @Param        avatar formData file true "Image file"
// @Success      200
// @Failure      400 {object} httputil.ErrorResponse "Invalid or too large image"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/me/avatar [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondUnauthenticated(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			httputil.RespondAppError(w, r, ErrTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			httputil.RespondAppError(w, r, ErrRequired)
		default:
			logging.GetLoggerFromContext(r.Context()).Warn("invalid avatar upload", "error", err.Error())
			httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	// one byte past the limit is enough for the service to reject it
	raw, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	if err := h.service.Set(r.Context(), u.ID, header.Filename, raw); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondEmpty(w)
}

// Delete handles avatar removal
// @Summary      Delete own avatar
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/me/avatar [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondUnauthenticated(w)
		return
	}

	if err := h.service.Clear(r.Context(), u.ID); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondEmpty(w)
}

// Get serves a user's avatar without authentication
// @Summary      Get a user's avatar
// @Tags         users
// @Produce      png
// @Param        id path string true "User ID"
// @Success      200 {file} binary
// @Failure      404 "No such user or no avatar"
// @Router       /users/{id}/avatar [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	data, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		httputil.RespondAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("failed to write avatar", "error", err.Error())
	}
}
