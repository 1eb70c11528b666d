package account

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/redmonkez12/task-manager-api/internal/auth"
	"github.com/redmonkez12/task-manager-api/internal/httputil"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/ratelimit"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

// Handler contains HTTP handlers for the /users endpoints
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
	}
}

// LoginRequest is the body of POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by registration and login
type AuthResponse struct {
	User  user.PublicUser `json:"user"`
	Token string          `json:"token"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Creates the account, queues a welcome email and returns a session token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterInput true "Registration data"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if !h.allow(w, r, ip, "register") {
		return
	}

	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	h.record(r, ip, "register")

	newUser, token, err := h.service.Register(r.Context(), in)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	httputil.RespondJSON(w, AuthResponse{User: newUser.Public(), Token: token}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Unable to login"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if !h.allow(w, r, ip, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	h.record(r, ip, "login")

	u, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, AuthResponse{User: u.Public(), Token: token}, http.StatusOK)
}

// Logout handles logout of the current session
// @Summary      Log out the current session
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	token, _ := auth.TokenFromContext(r.Context())

	if err := h.service.Logout(r.Context(), u, token); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondEmpty(w)
}

// LogoutAll handles logout of every session
// @Summary      Log out every session
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/logoutall [post]
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.LogoutAll(r.Context(), u); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondEmpty(w)
}

// Me returns the authenticated user's profile
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.PublicUser
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, u.Public(), http.StatusOK)
}

// UpdateMe handles profile updates
// @Summary      Update own profile
// @Description  Allowed fields are name, email, password and age.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body object true "Fields to update"
// @Success      200 {object} user.PublicUser
// @Failure      400 {object} httputil.ErrorResponse "Invalid updates or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid profile update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), u, patch)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, updated.Public(), http.StatusOK)
}

// DeleteMe handles account deletion
// @Summary      Delete own account
// @Description  Removes the user with all their tasks and sessions.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.PublicUser
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), u)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("user deleted", "user_id", deleted.ID)

	httputil.RespondJSON(w, deleted.Public(), http.StatusOK)
}

// allow reports whether ip may proceed. Limiter failures let the request
// through.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, ip, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return true
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondAppError(w, r, ErrTooManyRequests)
		return false
	}
	return true
}

func (h *Handler) record(r *http.Request, ip, purpose string) {
	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to record IP request", "error", err.Error())
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httputil.RespondUnauthenticated(w)
	}
	return u, ok
}

// getClientIP returns the host part of RemoteAddr, which chi's RealIP
// middleware has already rewritten from proxy headers
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
