package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/task-manager-api/internal/account"
	"github.com/redmonkez12/task-manager-api/internal/auth"
	"github.com/redmonkez12/task-manager-api/internal/avatar"
	"github.com/redmonkez12/task-manager-api/internal/config"
	"github.com/redmonkez12/task-manager-api/internal/httputil"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/task"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Account *account.Handler
	Task    *task.Handler
	Avatar  *avatar.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, handlers Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI is only mounted in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handlers.Account.Register)
		r.Post("/login", handlers.Account.Login)
		r.Get("/{id}/avatar", handlers.Avatar.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/logout", handlers.Account.Logout)
			r.Post("/logoutall", handlers.Account.LogoutAll)
			r.Get("/me", handlers.Account.Me)
			r.Patch("/me", handlers.Account.UpdateMe)
			r.Delete("/me", handlers.Account.DeleteMe)
			r.Post("/me/avatar", handlers.Avatar.Upload)
			r.Delete("/me/avatar", handlers.Avatar.Delete)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Post("/", handlers.Task.Create)
		r.Get("/", handlers.Task.List)
		r.Get("/{id}", handlers.Task.Get)
		r.Patch("/{id}", handlers.Task.Update)
		r.Delete("/{id}", handlers.Task.Delete)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
