package metrics_test

import (
	"expvar"
	"testing"
	"time"

	"github.com/ardanlabs/aidetect/sdk/observ/metrics"
)

func Test_Counters(t *testing.T) {
	tests := []struct {
		name string
		fn   func() int64
	}{
		{"requests", metrics.AddRequests},
		{"errors", metrics.AddErrors},
		{"panics", metrics.AddPanics},
		{"inferences", metrics.AddInferences},
		{"rejections", metrics.AddRejections},
		{"truncations", metrics.AddTruncations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.fn()
			after := tt.fn()

			if after != before+1 {
				t.Fatalf("expected %d, got %d", before+1, after)
			}
		})
	}
}

func Test_Averages(t *testing.T) {
	metrics.AddInferenceTime(1 * time.Second)
	metrics.AddInferenceTime(3 * time.Second)

	v := expvar.Get("model_inference_max")
	if v == nil {
		t.Fatal("expected model_inference_max to be published")
	}

	if v.String() != "3" {
		t.Fatalf("expected max 3, got %s", v.String())
	}

	min := expvar.Get("model_inference_min")
	if min.String() != "1" {
		t.Fatalf("expected min 1, got %s", min.String())
	}
}

func Test_Verdicts(t *testing.T) {
	metrics.AddVerdict("AI")
	metrics.AddVerdict("AI")
	metrics.AddVerdict("Human")

	verdicts := expvar.Get("detector_verdicts").(*expvar.Map)

	if got := verdicts.Get("AI").String(); got != "2" {
		t.Fatalf("expected 2 AI verdicts, got %s", got)
	}

	if got := verdicts.Get("Human").String(); got != "1" {
		t.Fatalf("expected 1 Human verdict, got %s", got)
	}
}
