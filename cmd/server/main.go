package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iliyamo/taskboard/internal/config"
	"github.com/iliyamo/taskboard/internal/database"
	"github.com/iliyamo/taskboard/internal/handler"
	"github.com/iliyamo/taskboard/internal/logger"
	"github.com/iliyamo/taskboard/internal/metrics"
	"github.com/iliyamo/taskboard/internal/oauth"
	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/router"
	"github.com/iliyamo/taskboard/internal/service"
	"github.com/iliyamo/taskboard/internal/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	driver, dsn := database.FromConfig(cfg)
	if cfg.DBAutoMigrate {
		if err := database.RunMigrations(driver, dsn); err != nil {
			return err
		}
		log.Info("migrations applied", slog.String("driver", driver))
	}
	db, err := database.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// OAuth state: Redis when reachable, otherwise this process only
	var states oauth.StateStore = oauth.NewMemoryStateStore()
	if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		states = oauth.NewRedisStateStore(rdb)
		log.Info("oauth state stored in redis", slog.String("addr", cfg.Redis.Address()))
	} else {
		log.Warn("redis unavailable, oauth state kept in memory")
	}

	var providers []oauth.Provider
	google := oauth.ProviderConfig{ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret, RedirectURL: cfg.GoogleCallbackURL}
	if google.Configured() {
		providers = append(providers, oauth.NewGoogleProvider(google))
	}
	github := oauth.ProviderConfig{ClientID: cfg.GitHubClientID, ClientSecret: cfg.GitHubClientSecret, RedirectURL: cfg.GitHubCallbackURL}
	if github.Configured() {
		providers = append(providers, oauth.NewGitHubProvider(github))
	}
	registry := oauth.NewRegistry(providers...)
	log.Info("oauth providers", slog.Any("names", registry.Names()))

	// Activity events
	var events queue.Publisher = queue.NopPublisher{}
	if cfg.ActivityQueueEnabled {
		pub := queue.NewAMQPPublisher(cfg.RabbitMQURL)
		defer pub.Close()
		buffered := queue.NewBufferedPublisher(pub, 256, 2*time.Second, log)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := buffered.Close(drainCtx); err != nil {
				log.Warn("activity events not drained", slog.String("error", err.Error()))
			}
		}()
		events = buffered
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.RabbitMQURL, cfg.ActivityLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	// Services
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)

	authSvc := service.NewAuthService(users, tokens, cfg.BcryptCost, events, rec)
	projectSvc := service.NewProjectService(projects, tasks, events)
	taskSvc := service.NewTaskService(tasks, projects, events)

	// HTTP
	e := echo.New()
	router.Setup(e, log, rec, cfg.FrontendURL)
	router.RegisterRoutes(e, db, reg)
	router.RegisterAuth(e,
		handler.NewAuthHandler(authSvc, cfg.RequestTimeout),
		handler.NewOAuthHandler(authSvc, registry, states, cfg.OAuthStateTTL, cfg.FrontendURL, cfg.RequestTimeout),
		tokens)
	router.RegisterProjects(e, handler.NewProjectHandler(projectSvc, cfg.RequestTimeout), tokens)
	router.RegisterTasks(e, handler.NewTaskHandler(taskSvc, cfg.RequestTimeout), tokens)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
