package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/observ/metrics"
)

// Panics recovers from panics and converts the panic to an error so it is
// reported in Metrics and handled in Errors. The route and the visitor's
// session are recorded with the stack.
func Panics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) (resp web.Encoder) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				sessionID := "none"
				if id, ok := session.FromRequest(r); ok {
					sessionID = id.String()
				}

				resp = errs.Errorf(errs.InternalOnlyLog, "PANIC[%v] ROUTE[%s] SESSION[%s] STACK[%s]", rec, routeName(r), sessionID, debug.Stack())

				metrics.AddPanics()
			}()

			return next(ctx, r)
		}

		return h
	}

	return m
}
