// Package server wires configuration, storage, services and transports
// into one process and runs it until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/config"
	gs "github.com/bierclub/bier/internal/server/grpc"
	"github.com/bierclub/bier/internal/server/httpapi"
	"github.com/bierclub/bier/internal/server/mail"
	"github.com/bierclub/bier/internal/server/metadata"
	"github.com/bierclub/bier/internal/server/metrics"
	"github.com/bierclub/bier/internal/server/repositories/repomanager"
	"github.com/bierclub/bier/internal/server/services"
)

const (
	logMaxSizeMB  = 50
	logMaxBackups = 5
	logMaxAgeDays = 30
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	db        *sql.DB
	registry  *prometheus.Registry

	users    *services.UserService
	accounts *services.AccountService
	chat     *services.ChatService
	sweeper  *services.Sweeper
}

// NewApp validates cfg, connects to the database, applies migrations and
// builds the services. Any failure here is fatal for the process.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, closer := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAgeDays: logMaxAgeDays,
	})

	secrets, err := services.SecretsFromConfig(cfg)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		closer.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newMetadataStore(ctx, cfg)
	if err != nil {
		db.Close()
		closer.Close()
		return nil, fmt.Errorf("metadata store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := services.Deps{
		DB:       db,
		Repos:    rm,
		Metadata: store,
		Mailer:   mail.NewMailer(newMailSender(cfg, logger), cfg.AppBaseURL),
		Logger:   logger,
		Metrics:  metrics.New(registry),
	}

	tokens := services.NewTokenService(deps, secrets)
	users, err := services.NewUserService(deps, secrets, tokens)
	if err != nil {
		db.Close()
		closer.Close()
		return nil, err
	}

	return &App{
		config:    cfg,
		logger:    logger,
		logCloser: closer,
		db:        db,
		registry:  registry,
		users:     users,
		accounts:  services.NewAccountService(deps, secrets, tokens),
		chat:      services.NewChatService(deps, secrets),
		sweeper:   services.NewSweeper(deps, cfg.SweepInterval),
	}, nil
}

func newMetadataStore(ctx context.Context, cfg *config.Config) (metadata.Store, error) {
	switch cfg.MetadataBackend {
	case config.MetadataBackendS3:
		return metadata.NewS3Store(ctx, metadata.S3Options{
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return metadata.NewFSStore(cfg.MetadataDir)
	}
}

// newMailSender uses Resend when an API key is configured and otherwise
// only logs the messages.
func newMailSender(cfg *config.Config, logger logging.Logger) mail.Sender {
	if cfg.ResendAPIKey == "" {
		logger.Warn(context.Background(), "RESEND_API_KEY not set, emails will only be logged")
		return mail.NewLogSender(logger)
	}
	return mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom, "")
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.users, app.accounts, app.chat)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.users, app.accounts, app.chat, app.logger)
	s := httpapi.NewServer(app.config.HTTPAddr, httpapi.NewRouter(h, app.logger, app.registry), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC and sweeps expired rows until ctx is canceled,
// a termination signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	app.close()
}

func (app *App) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}
	_ = app.logCloser.Close()
}
