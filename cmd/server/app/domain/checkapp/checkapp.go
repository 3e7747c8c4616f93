// Package checkapp maintains the app layer api for the check domain.
package checkapp

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/detector"
)

type app struct {
	build    string
	log      *logger.Logger
	provider *detector.Provider
}

func newApp(cfg Config) *app {
	return &app{
		build:    cfg.Build,
		log:      cfg.Log,
		provider: cfg.Provider,
	}
}

// readiness reports the model state. The service is not ready only when the
// model failed to load, a model that is still loading can take traffic.
func (a *app) readiness(ctx context.Context, r *http.Request) web.Encoder {
	if err := a.provider.LoadErr(); err != nil {
		a.log.Info(ctx, "readiness failure", "ERROR", err)
		return errs.New(errs.Unavailable, err)
	}

	status := "loading"
	if a.provider.Loaded() {
		status = "ready"
	}

	return Ready{
		Status:  status,
		ModelID: a.provider.ModelID(),
	}
}

func (a *app) liveness(ctx context.Context, r *http.Request) web.Encoder {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	info := Info{
		Status:     "up",
		Build:      a.build,
		Host:       host,
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return info
}
