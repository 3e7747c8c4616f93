package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/observ/metrics"
)

// Metrics updates the service counters and the per route counters.
func Metrics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			route := routeName(r)
			metrics.AddRouteRequest(route)

			if n := metrics.AddRequests(); n == 1 || n%100 == 0 {
				metrics.AddGoroutines()
			}

			if checkIsError(resp) != nil {
				metrics.AddErrors()
				metrics.AddRouteError(route)
			}

			return resp
		}

		return h
	}

	return m
}

// routeName returns the mux pattern that matched the request.
func routeName(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}

	return r.Pattern
}
