// Package aidetect is the detector web service.
package aidetect

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/api/services/aidetect/build"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/debug"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/mux"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/observ/otel"
	"github.com/ardanlabs/aidetect/sdk/security/rate"
	"github.com/ardanlabs/conf/v3"
)

var tag = "develop"

// Run starts the service and blocks until it is told to shut down.
func Run(showHelp bool) error {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	traceIDFn := func(ctx context.Context) string {
		return otel.GetTraceID(ctx)
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "AIDETECT", traceIDFn, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log, showHelp); err != nil {
		return err
	}

	return nil
}

func run(ctx context.Context, log *logger.Logger, showHelp bool) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	if !showHelp {
		log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))
	}

	// -------------------------------------------------------------------------
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:30s"`
			WriteTimeout    time.Duration `conf:"default:2m"`
			IdleTimeout     time.Duration `conf:"default:1m"`
			ShutdownTimeout time.Duration `conf:"default:1m"`
			APIHost         string        `conf:"default:localhost:8080"`
			DebugHost       string        `conf:"default:localhost:8090"`
		}
		Tempo struct {
			Host        string  // `conf:"default:tempo:4317"`
			ServiceName string  `conf:"default:aidetect"`
			Probability float64 `conf:"default:0.05"`
		}
		Model struct {
			ID                   string `conf:"default:openai-community/roberta-base-openai-detector"`
			File                 string
			URL                  string
			Device               string
			ContextWindow        int    `conf:"default:0"`
			LabelAI              int    `conf:"default:0"`
			LabelHuman           int    `conf:"default:1"`
			MaxTokens            int    `conf:"default:512"`
			Instances            int    `conf:"default:1"`
			IgnoreIntegrityCheck bool   `conf:"default:true"`
			DownloadRetries      uint64 `conf:"default:2"`
		}
		Rate struct {
			Limit  int           `conf:"default:30"`
			Window time.Duration `conf:"default:1m"`
			DBPath string
		}
		Session struct {
			TTL         time.Duration `conf:"default:1h"`
			MaxSessions int           `conf:"default:10000"`
			LoadWait    time.Duration `conf:"default:2s"`
		}
		BasePath     string
		LibPath      string
		Arch         string
		OS           string
		Processor    string
		HfToken      string `conf:"mask"`
		AllowUpgrade bool   `conf:"default:true"`
		LlamaLog     int    `conf:"default:1"`
	}{
		Version: conf.Version{
			Build: tag,
			Desc:  "AI/Human Detector",
		},
	}

	const prefix = "AIDETECT"
	if showHelp {
		help, err := conf.UsageInfo(prefix, &cfg)
		if err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
		return fmt.Errorf("%s", help)
	}

	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Build)
	defer log.Info(ctx, "shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Info(ctx, "startup", "config", out)

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Build)

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log.Info, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/v1/liveness":  {},
			"/v1/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
	})

	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer func() {
		log.Info(ctx, "shutdown", "status", "teardown otel")
		teardown(context.Background())
	}()

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Detector System

	log.Info(ctx, "startup", "status", "initializing detector")

	loader, err := newLoader(log, loaderConfig{
		ModelID:              cfg.Model.ID,
		ModelFile:            cfg.Model.File,
		ModelURL:             cfg.Model.URL,
		Device:               cfg.Model.Device,
		ContextWindow:        cfg.Model.ContextWindow,
		IgnoreIntegrityCheck: cfg.Model.IgnoreIntegrityCheck,
		BasePath:             cfg.BasePath,
		LibPath:              cfg.LibPath,
		Arch:                 cfg.Arch,
		OS:                   cfg.OS,
		Processor:            cfg.Processor,
		HfToken:              cfg.HfToken,
		AllowUpgrade:         cfg.AllowUpgrade,
		LlamaLog:             cfg.LlamaLog,
		DownloadRetries:      cfg.Model.DownloadRetries,
	})

	if err != nil {
		return fmt.Errorf("initializing model loader: %w", err)
	}

	provider := detector.NewProvider(cfg.Model.ID, loader.load)

	dtr, err := detector.New(provider, detector.Config{
		Log: log.Info,
		Labels: detector.Labels{
			AI:    cfg.Model.LabelAI,
			Human: cfg.Model.LabelHuman,
		},
		MaxTokens: cfg.Model.MaxTokens,
		Instances: cfg.Model.Instances,
	})

	if err != nil {
		return fmt.Errorf("initializing detector: %w", err)
	}

	defer func() {
		log.Info(ctx, "shutdown", "status", "unloading model")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := provider.Unload(ctx); err != nil {
			log.Error(ctx, "shutdown", "ERROR", err)
		}
	}()

	sessions, err := session.NewStore(cfg.Session.MaxSessions, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("initializing session store: %w", err)
	}

	limiter, err := rate.New(rate.Config{
		DBPath: cfg.Rate.DBPath,
	})

	if err != nil {
		return fmt.Errorf("initializing rate limiter: %w", err)
	}

	defer limiter.Close()

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:      tag,
		Log:        log,
		Tracer:     tracer,
		Provider:   provider,
		Detector:   dtr,
		Sessions:   sessions,
		Limiter:    limiter,
		RateLimit:  rate.Limit{Max: cfg.Rate.Limit, Window: cfg.Rate.Window},
		SessionTTL: cfg.Session.TTL,
		LoadWait:   cfg.Session.LoadWait,
	}

	webAPI, err := mux.WebAPI(cfgMux, build.Routes())
	if err != nil {
		return fmt.Errorf("initializing web api: %w", err)
	}

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)

		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
