package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taskboard/docs"
	"taskboard/internal/analytics"
	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/pdf"
	"taskboard/internal/realtime"
	"taskboard/internal/repositories"
	"taskboard/internal/routes"
	"taskboard/internal/services"
	"taskboard/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OpenDB connects to Postgres and applies the pool settings.
func OpenDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

type App struct {
	cfg    *config.Config
	db     *sqlx.DB
	router *gin.Engine
	logger *slog.Logger
}

// New wires repositories, services, handlers and the router over an open db.
func New(cfg *config.Config, db *sqlx.DB, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// === Optional integrations ===
	avatars, err := storage.NewAvatarStore(cfg.Uploads.Dir, cfg.Uploads.MaxAvatarBytes)
	if err != nil {
		return nil, err
	}

	var email services.EmailService
	if cfg.Email.Enabled() {
		email = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	} else {
		logger.Info("smtp not configured, welcome emails disabled")
	}

	var notifier services.MessageSender
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramService(cfg.Telegram.BotToken, logger)
		if err != nil {
			// бот не обязателен, работаем без уведомлений
			logger.Warn("telegram disabled", "err", err)
		} else {
			notifier = tg
		}
	}

	// === Services ===
	hub := realtime.NewBoardHub(logger)
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	userService := services.NewUserService(userRepo, authService, email, avatars, logger)
	projectService := services.NewProjectService(projectRepo, taskRepo, logger)
	taskService := services.NewTaskService(services.TaskServiceDeps{
		Tasks:    taskRepo,
		Projects: projectRepo,
		Users:    userRepo,
		Notifier: notifier,
		Events:   hub,
		Logger:   logger,
	})
	analyticsService := analytics.NewService(projectRepo, taskRepo, loc)
	pdfGen := pdf.NewReportGenerator(cfg.Report.FontPath)

	// === Gin ===
	handlers.RegisterValidators()
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.RecoveryWithLog(logger),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(userService, logger),
		Users:     handlers.NewUserHandler(userService, cfg.Uploads.MaxAvatarBytes, logger),
		Projects:  handlers.NewProjectHandler(projectService, hub, logger),
		Tasks:     handlers.NewTaskHandler(taskService, logger),
		Analytics: handlers.NewAnalyticsHandler(analyticsService, userService, pdfGen, logger),
		Health:    handlers.Health(db),
	}, routes.Options{
		Tokens:     authService,
		LoginRate:  cfg.Auth.LoginRate,
		LoginBurst: cfg.Auth.LoginBurst,
		UploadsDir: cfg.Uploads.Dir,
	})

	return &App{cfg: cfg, db: db, router: router, logger: logger}, nil
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run loads the config at configPath and serves until ctx is done.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	if strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database", "err", err)
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := repositories.RunMigrations(db.DB, repositories.DefaultMigrationConfig(), logger); err != nil {
			return err
		}
	}

	a, err := New(cfg, db, logger)
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}
