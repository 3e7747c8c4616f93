package detectapp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/security/rate"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *logger.Logger
	Provider   *detector.Provider
	Detector   *detector.Detector
	Sessions   *session.Store
	Limiter    *rate.Limiter
	RateLimit  rate.Limit
	SessionTTL time.Duration
	LoadWait   time.Duration
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) error {
	api, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("detectapp: %w", err)
	}

	app.HandlerFunc(http.MethodGet, "", "/{$}", api.page)
	app.HandlerFunc(http.MethodPost, "", "/detect", api.detect)

	return nil
}
