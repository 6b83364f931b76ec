// Package server assembles the CMS backend: database and migrations,
// object storage, mail, the business services, and the HTTP API and gRPC
// health servers, and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/auth"
	"github.com/dmitrijs2005/cmskeeper/internal/server/config"
	"github.com/dmitrijs2005/cmskeeper/internal/server/mail"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmskeeper/internal/server/services"
	"github.com/dmitrijs2005/cmskeeper/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/cmskeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/cmskeeper/internal/server/http"
)

const healthCheckInterval = 15 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *hs.HTTPServer
	health *gs.HealthServer
}

// OpenDatabase connects to PostgreSQL through pgx and applies pending
// migrations.
func OpenDatabase(ctx context.Context, dsn string, rm repomanager.RepositoryManager) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.New(c.LogLevel)

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDatabase(ctx, c.DatabaseDSN, rm)
	if err != nil {
		return nil, err
	}

	handler, guard, err := buildHandler(ctx, c, db, rm, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "cms"),
	)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   hs.NewHTTPServer(c.EndpointAddrHTTP, hs.NewRouter(handler, guard, reg), logger),
		health: gs.NewHealthServer(c.EndpointAddrGRPC, db, healthCheckInterval, logger),
	}, nil
}

func buildHandler(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*hs.Handler, *auth.Guard, error) {
	settings, err := services.NewSettingService(db, rm, c.SettingsCacheSize, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("settings init error: %w", err)
	}

	smtp, err := mail.NewSMTPClient(mail.SMTPOptions{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("smtp init error: %w", err)
	}
	notifier, err := mail.NewNotifier(smtp, c.EmailFrom, settings, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("mail init error: %w", err)
	}

	objects, err := storage.NewS3Storage(ctx, storage.Options{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("storage init error: %w", err)
	}

	authService := auth.NewService(rm.Users(db), auth.Options{
		AccessSecret:  []byte(c.JWTSecret),
		RefreshSecret: []byte(c.JWTRefreshSecret),
		Expiry:        auth.Expiry{Amount: c.JWTExpiresIn, Unit: c.JWTExpiresInUnit},
	}, logger)

	passwords := services.NewPasswordService(rm.Users(db), notifier, services.PasswordOptions{
		CryptSecret: c.CryptSecret,
		FrontURL:    c.FrontURLResetPassword,
		MaxAge:      c.ResetTokenMaxAge,
	}, logger)

	handler := hs.NewHandler(hs.Services{
		Auth:       authService,
		Users:      services.NewUserService(db, rm, notifier, logger),
		Passwords:  passwords,
		Pages:      services.NewPageService(db, rm, c.MaxSlugGenerateAttempts, logger),
		Categories: services.NewCategoryService(db, rm, c.MaxSlugGenerateAttempts, logger),
		Files:      services.NewFileService(db, rm, objects, c.MaxUploadSize, logger),
		Settings:   settings,
	}, c.MaxUploadSize, logger)

	return handler, auth.NewGuard(authService), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs one server and brings the whole app down when it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.health.Run)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
