// Package mux provides support to bind domain level routes
// to the application mux.
package mux

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/mid"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/security/rate"
	"go.opentelemetry.io/otel/trace"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build      string
	Log        *logger.Logger
	Tracer     trace.Tracer
	Provider   *detector.Provider
	Detector   *detector.Detector
	Sessions   *session.Store
	Limiter    *rate.Limiter
	RateLimit  rate.Limit
	SessionTTL time.Duration
	LoadWait   time.Duration
}

// RouteAdder defines behavior that sets the routes to bind for an instance
// of the service.
type RouteAdder interface {
	Add(app *web.App, cfg Config) error
}

// WebAPI constructs a http.Handler with all application routes bound.
func WebAPI(cfg Config, routeAdder RouteAdder) (http.Handler, error) {
	app := web.NewApp(
		cfg.Log.Info,
		cfg.Tracer,
		mid.Otel(cfg.Tracer),
		mid.Logger(cfg.Log),
		mid.Metrics(),
		mid.Errors(cfg.Log),
		mid.Panics(),
	)

	if err := routeAdder.Add(app, cfg); err != nil {
		return nil, fmt.Errorf("web-api: %w", err)
	}

	return app, nil
}
