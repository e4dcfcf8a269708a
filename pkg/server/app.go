package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/handler/api"
	"ParamSweep/internal/usecase"
	"ParamSweep/pkg/cache"
	pkgch "ParamSweep/pkg/clickhouse"
	"ParamSweep/pkg/config"
	xhttp "ParamSweep/pkg/http"
	pkgkafka "ParamSweep/pkg/kafka"
	applogger "ParamSweep/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    *api.Handler
	hub        *api.Hub
	live       *usecase.LiveSignals
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	publisher  domrepo.Publisher
	cache      cache.Service
	chClient   *pkgch.Client
	registry   *prometheus.Registry
	httpServer *xhttp.Server

	wg sync.WaitGroup
}

// New creates a new App instance with all dependencies. consumer, kh and
// chClient may be nil when the matching backend is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.Handler,
	hub *api.Hub,
	live *usecase.LiveSignals,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSweepHandler,
	publisher domrepo.Publisher,
	c cache.Service,
	chClient *pkgch.Client,
	registry *prometheus.Registry,
) *App {
	a := &App{
		cfg:       cfg,
		l:         l.With("app"),
		handler:   handler,
		hub:       hub,
		live:      live,
		consumer:  consumer,
		publisher: publisher,
		cache:     c,
		chClient:  chClient,
		registry:  registry,
	}
	if kh != nil {
		a.kh = kh
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.l),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(a.cfg.Metrics.Path, a.registry))
	} else {
		opts = append(opts, xhttp.WithMetrics("", a.registry))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.cfg.Live.Enabled && a.live != nil {
		ids := make([]models.StrategyID, 0, len(a.cfg.Live.Strategies))
		for _, s := range a.cfg.Live.Strategies {
			ids = append(ids, models.StrategyID(s))
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.live.Run(ctx, a.cfg.Live.Coins, ids, a.cfg.Live.PollInterval)
		}()
		a.l.Info("live signals started",
			applogger.Strings("coins", a.cfg.Live.Coins),
			applogger.Strings("strategies", a.cfg.Live.Strategies),
			applogger.Duration("every", a.cfg.Live.PollInterval),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		cancel()
		_ = a.shutdown()
		return err
	}
	a.l.Info("http server started", applogger.String("addr", a.httpServer.Addr()))

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.wg.Wait()
	if a.hub != nil {
		a.hub.Close()
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
