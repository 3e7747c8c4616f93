// Package build binds all the routes into the specified app.
package build

import (
	"github.com/ardanlabs/aidetect/cmd/server/app/domain/checkapp"
	"github.com/ardanlabs/aidetect/cmd/server/app/domain/detectapp"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/mux"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
)

// Routes constructs the all value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() all {
	return all{}
}

type all struct{}

// Add implements the RouterAdder interface.
func (all) Add(app *web.App, cfg mux.Config) error {
	checkapp.Routes(app, checkapp.Config{
		Build:    cfg.Build,
		Log:      cfg.Log,
		Provider: cfg.Provider,
	})

	return detectapp.Routes(app, detectapp.Config{
		Log:        cfg.Log,
		Provider:   cfg.Provider,
		Detector:   cfg.Detector,
		Sessions:   cfg.Sessions,
		Limiter:    cfg.Limiter,
		RateLimit:  cfg.RateLimit,
		SessionTTL: cfg.SessionTTL,
		LoadWait:   cfg.LoadWait,
	})
}
