package checkapp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/aidetect/cmd/server/app/domain/checkapp"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/detector/model"
	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace/noop"
)

type stubModel struct{}

func (stubModel) Encode(text string, maxTokens int) (model.Encoding, error) {
	return model.Encoding{}, nil
}

func (stubModel) Forward(ctx context.Context, enc model.Encoding) ([]float32, error) {
	return []float32{0, 0}, nil
}

func (stubModel) Unload(ctx context.Context) error {
	return nil
}

func newApp(provider *detector.Provider) *web.App {
	log := logger.NewDiscard()

	app := web.NewApp(log.Info, noop.NewTracerProvider().Tracer("test"))

	checkapp.Routes(app, checkapp.Config{
		Build:    "test",
		Log:      log,
		Provider: provider,
	})

	return app
}

func readiness(t *testing.T, app *web.App) (int, checkapp.Ready) {
	t.Helper()

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/readiness", nil))

	var got checkapp.Ready
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	}

	return w.Code, got
}

func Test_Readiness(t *testing.T) {
	t.Run("loading-then-ready", func(t *testing.T) {
		provider := detector.NewProvider("test/model", func(ctx context.Context) (detector.Model, error) {
			return stubModel{}, nil
		})

		app := newApp(provider)

		code, got := readiness(t, app)
		if code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		exp := checkapp.Ready{Status: "loading", ModelID: "test/model"}
		if diff := cmp.Diff(exp, got); diff != "" {
			t.Errorf("unexpected readiness (-want +got):\n%s", diff)
		}

		if _, err := provider.Load(context.Background()); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		_, got = readiness(t, app)
		if got.Status != "ready" {
			t.Errorf("expected status ready, got %s", got.Status)
		}
	})

	t.Run("failed", func(t *testing.T) {
		provider := detector.NewProvider("test/model", func(ctx context.Context) (detector.Model, error) {
			return nil, errors.New("missing file")
		})

		provider.Load(context.Background())

		code, _ := readiness(t, newApp(provider))
		if code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, code)
		}
	})
}

func Test_Liveness(t *testing.T) {
	app := newApp(detector.NewProvider("test/model", nil))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/liveness", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got checkapp.Info
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if got.Status != "up" || got.Build != "test" {
		t.Errorf("expected up/test, got %s/%s", got.Status, got.Build)
	}
}
