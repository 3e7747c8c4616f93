package checkapp

import (
	"net/http"

	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/detector"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build    string
	Log      *logger.Logger
	Provider *detector.Provider
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg)

	app.HandlerFuncNoMid(http.MethodGet, version, "/readiness", api.readiness)
	app.HandlerFuncNoMid(http.MethodGet, version, "/liveness", api.liveness)
}
