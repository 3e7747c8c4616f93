package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"go.opentelemetry.io/otel/trace/noop"
)

type text string

func (t text) Encode() ([]byte, string, error) {
	return []byte(t), "text/plain", nil
}

func Test_App(t *testing.T) {
	var order []string

	mid := func(name string) web.MidFunc {
		return func(next web.HandlerFunc) web.HandlerFunc {
			return func(ctx context.Context, r *http.Request) web.Encoder {
				order = append(order, name)
				return next(ctx, r)
			}
		}
	}

	log := func(ctx context.Context, msg string, args ...any) {}
	app := web.NewApp(log, noop.NewTracerProvider().Tracer("test"), mid("app"))

	app.HandlerFunc(http.MethodGet, "", "/hello", func(ctx context.Context, r *http.Request) web.Encoder {
		if web.GetWriter(ctx) == nil {
			t.Error("expected the writer in the context")
		}
		return text("hello")
	}, mid("route"))

	app.HandlerFunc(http.MethodGet, "v1", "/empty", func(ctx context.Context, r *http.Request) web.Encoder {
		return nil
	})

	t.Run("hello", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		if w.Body.String() != "hello" {
			t.Fatalf("expected body hello, got %s", w.Body.String())
		}

		if w.Header().Get("Content-Type") != "text/plain" {
			t.Fatalf("expected content type text/plain, got %s", w.Header().Get("Content-Type"))
		}

		if len(order) != 2 || order[0] != "app" || order[1] != "route" {
			t.Fatalf("expected app then route middleware, got %v", order)
		}
	})

	t.Run("group", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/empty", nil))

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
		}
	})

	t.Run("method", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hello", nil))

		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
		}
	})
}
