package verdict_test

import (
	"testing"

	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/detector/verdict"
	"github.com/google/go-cmp/cmp"
)

func Test_Decide(t *testing.T) {
	tests := []struct {
		name string
		p    detector.Probabilities
		exp  verdict.Verdict
	}{
		{"ai", detector.Probabilities{AI: 0.7, Human: 0.3}, verdict.Verdict{Label: verdict.LabelAI, Probability: 0.7}},
		{"human", detector.Probabilities{AI: 0.3, Human: 0.7}, verdict.Verdict{Label: verdict.LabelHuman, Probability: 0.7}},
		{"tie", detector.Probabilities{AI: 0.5, Human: 0.5}, verdict.Verdict{Label: verdict.LabelHuman, Probability: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verdict.Decide(tt.p)

			if diff := cmp.Diff(tt.exp, got); diff != "" {
				t.Fatalf("unexpected verdict (-exp +got):\n%s", diff)
			}
		})
	}
}

func Test_FormatPercent(t *testing.T) {
	tests := []struct {
		v   float64
		exp string
	}{
		{0.9, "90.00%"},
		{0.1, "10.00%"},
		{0, "0.00%"},
		{1, "100.00%"},
		{0.12346, "12.35%"},
		{0.12345, "12.35%"},
		{0.8999999999999999, "90.00%"},
	}

	for _, tt := range tests {
		if got := verdict.FormatPercent(tt.v); got != tt.exp {
			t.Fatalf("expected %s, got %s", tt.exp, got)
		}
	}
}

func Test_NewReport(t *testing.T) {
	t.Run("ai", func(t *testing.T) {
		r := verdict.NewReport(detector.Probabilities{AI: 0.9, Human: 0.1})

		exp := verdict.Report{
			Verdict: verdict.Verdict{Label: verdict.LabelAI, Probability: 0.9},
			Metrics: []verdict.Metric{
				{Label: "AI-generated probability", Value: "90.00%"},
				{Label: "Human-written probability", Value: "10.00%"},
			},
			Banner: verdict.Banner{
				Text:  "This text is most likely AI-generated (confidence 90.00%)",
				Level: verdict.LevelError,
			},
			Progress: verdict.Progress{Value: 0.9, Label: "AI Probability", Color: verdict.ColorAI},
			Chart: verdict.Chart{
				XTitle: "Source",
				YTitle: "Probability",
				Bars: []verdict.Bar{
					{Label: "AI (Fake)", Value: 0.9, Color: "#FF4B4B"},
					{Label: "Human (Real)", Value: 0.1, Color: "#00CC96"},
				},
			},
		}

		if diff := cmp.Diff(exp, r); diff != "" {
			t.Fatalf("unexpected report (-exp +got):\n%s", diff)
		}
	})

	t.Run("human", func(t *testing.T) {
		r := verdict.NewReport(detector.Probabilities{AI: 0.25, Human: 0.75})

		if r.Banner.Level != verdict.LevelSuccess {
			t.Fatalf("expected level %s, got %s", verdict.LevelSuccess, r.Banner.Level)
		}

		if r.Progress.Label != "Human Probability" || r.Progress.Value != 0.75 {
			t.Fatalf("expected human progress 0.75, got %s %v", r.Progress.Label, r.Progress.Value)
		}

		if r.Progress.Color != verdict.ColorHuman {
			t.Fatalf("expected human progress color %s, got %s", verdict.ColorHuman, r.Progress.Color)
		}

		// The chart order never depends on the verdict.
		if r.Chart.Bars[0].Label != "AI (Fake)" || r.Chart.Bars[1].Label != "Human (Real)" {
			t.Fatalf("unexpected bar order: %v", r.Chart.Bars)
		}
	})
}
