package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/task-manager-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/task-manager-api/internal/account"
	"github.com/redmonkez12/task-manager-api/internal/auth"
	"github.com/redmonkez12/task-manager-api/internal/avatar"
	"github.com/redmonkez12/task-manager-api/internal/config"
	"github.com/redmonkez12/task-manager-api/internal/database"
	"github.com/redmonkez12/task-manager-api/internal/email"
	httpServer "github.com/redmonkez12/task-manager-api/internal/http"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/ratelimit"
	"github.com/redmonkez12/task-manager-api/internal/task"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

// @title           Task Manager API
// @version         1.0
// @description     Multi-user task manager with session tokens, avatars and email notifications.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3003
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	rootCmd := &cobra.Command{
		Use:          "task-manager-api",
		Short:        "Task manager REST API",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  migrateRunner(database.Migrate),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE:  migrateRunner(database.Rollback),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the status of every migration",
			RunE:  migrateRunner(database.MigrationStatus),
		},
	)

	rootCmd.AddCommand(serveCmd, migrateCmd)

	// Allow running without subcommand (default to serve)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateRunner(fn func(ctx context.Context, db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		return fn(cmd.Context(), db.DB)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(ctx, db.DB); err != nil {
			return err
		}
	}

	// Initialize rate limiter; a nil limiter lets every request through
	var rateLimiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()

		rateLimiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	// Initialize repositories
	userRepo := user.NewRepository(db)
	taskRepo := task.NewRepository(db)

	// Initialize token service and sessions
	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	sessions := auth.NewSessions(tokenService, userRepo)

	// Initialize email dispatcher
	transport, err := email.NewTransport(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize email transport: %w", err)
	}
	dispatcher := email.NewDispatcher(transport, logger, cfg.Email.QueueSize, cfg.Email.SendTimeout)
	dispatcher.Start()
	defer dispatcher.Close()

	// Initialize avatar storage
	avatarStore, err := initAvatarStore(ctx, cfg.Avatar, userRepo)
	if err != nil {
		return fmt.Errorf("failed to initialize avatar store: %w", err)
	}
	avatarService := avatar.NewService(avatarStore, cfg.Avatar.MaxBytes, cfg.Avatar.MaxPixels)

	// Initialize services
	accountService := account.NewService(
		db,
		userRepo,
		taskRepo,
		sessions,
		auth.NewPasswordHasher(auth.DefaultPasswordParams),
		dispatcher,
		avatarService,
		logger,
	)
	taskService := task.NewService(taskRepo)

	// Initialize router
	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Account: account.NewHandler(accountService, rateLimiter),
		Task:    task.NewHandler(taskService),
		Avatar:  avatar.NewHandler(avatarService, cfg.Avatar.MaxBytes),
	}, auth.NewMiddleware(sessions), logger)

	// Serve until SIGINT or SIGTERM, then shut down gracefully
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := httpServer.NewServer(cfg.Server, router, logger)
	return server.Run(ctx)
}

func initAvatarStore(ctx context.Context, cfg config.AvatarConfig, users *user.Repository) (avatar.Store, error) {
	if cfg.Store == config.AvatarStoreS3 {
		return avatar.NewS3Store(ctx, cfg)
	}
	return avatar.NewDBStore(users), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
