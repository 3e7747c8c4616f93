package mid_test

import (
	"bytes"
	"context"
	"expvar"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/mid"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

func newApp(buf *bytes.Buffer) *web.App {
	log := logger.New(buf, logger.LevelInfo, "TEST", nil)
	tracer := noop.NewTracerProvider().Tracer("test")

	return web.NewApp(log.Info, tracer,
		mid.Otel(tracer),
		mid.Logger(log),
		mid.Metrics(),
		mid.Errors(log),
		mid.Panics(),
	)
}

func Test_Panics(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(&buf)

	app.HandlerFunc(http.MethodGet, "", "/panic", func(ctx context.Context, r *http.Request) web.Encoder {
		panic("boom")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	if strings.Contains(w.Body.String(), "boom") {
		t.Fatalf("expected the panic to stay out of the response, got %s", w.Body.String())
	}

	if !strings.Contains(buf.String(), "boom") {
		t.Fatal("expected the panic to be logged")
	}

	t.Run("session", func(t *testing.T) {
		buf.Reset()

		sessionID := uuid.New()

		r := httptest.NewRequest(http.MethodGet, "/panic", nil)
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID.String()})

		app.ServeHTTP(httptest.NewRecorder(), r)

		for _, exp := range []string{"ROUTE[GET /panic]", "SESSION[" + sessionID.String() + "]"} {
			if !strings.Contains(buf.String(), exp) {
				t.Errorf("expected the log to contain %q", exp)
			}
		}
	})
}

func Test_MetricsRoutes(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(&buf)

	app.HandlerFunc(http.MethodPost, "", "/detect", func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.Errorf(errs.InvalidArgument, "bad form")
	})

	routes := expvar.Get("service_routes").(*expvar.Map)
	routeErrors := expvar.Get("service_route_errors").(*expvar.Map)

	count := func(m *expvar.Map, key string) int64 {
		v, ok := m.Get(key).(*expvar.Int)
		if !ok {
			return 0
		}
		return v.Value()
	}

	const route = "POST /detect"

	before := count(routes, route)
	beforeErrs := count(routeErrors, route)

	for range 2 {
		app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/detect", nil))
	}

	if got := count(routes, route) - before; got != 2 {
		t.Errorf("expected 2 requests for %s, got %d", route, got)
	}

	if got := count(routeErrors, route) - beforeErrs; got != 2 {
		t.Errorf("expected 2 errors for %s, got %d", route, got)
	}
}

func Test_Errors(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(&buf)

	app.HandlerFunc(http.MethodGet, "", "/bad", func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.Errorf(errs.InvalidArgument, "missing text field")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	if !strings.Contains(w.Body.String(), "missing text field") {
		t.Fatalf("expected the message in the response, got %s", w.Body.String())
	}

	if !strings.Contains(buf.String(), "request completed") {
		t.Fatal("expected the request to be logged")
	}
}
