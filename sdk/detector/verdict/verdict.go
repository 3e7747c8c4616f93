// Package verdict turns a probability pair into the verdict and the values
// shown on the report.
package verdict

import (
	"fmt"

	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/shopspring/decimal"
)

// Label represents the class a text is assigned to.
type Label string

// Set of labels a verdict can carry.
const (
	LabelAI    Label = "AI"
	LabelHuman Label = "Human"
)

// Set of colors used for the chart bars.
const (
	ColorAI    = "#FF4B4B"
	ColorHuman = "#00CC96"
)

// Set of banner levels.
const (
	LevelError   = "error"
	LevelSuccess = "success"
)

// Verdict represents the winning class and its probability.
type Verdict struct {
	Label       Label
	Probability float64
}

// Decide picks the class with the larger probability. A tie goes to Human.
func Decide(p detector.Probabilities) Verdict {
	if p.AI > p.Human {
		return Verdict{Label: LabelAI, Probability: p.AI}
	}

	return Verdict{Label: LabelHuman, Probability: p.Human}
}

// FormatPercent renders a probability as a percentage with two decimals,
// rounding half away from zero on the shortest decimal form of v.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

// =============================================================================

// Metric is one labelled percentage.
type Metric struct {
	Label string
	Value string
}

// Banner is the verdict message and the level it is shown at.
type Banner struct {
	Text  string
	Level string
}

// Progress is the bar showing the winning probability, in the winning
// class's color.
type Progress struct {
	Value float64
	Label string
	Color string
}

// Bar is one bar of the chart.
type Bar struct {
	Label string
	Value float64
	Color string
}

// Chart is the probability distribution chart.
type Chart struct {
	XTitle string
	YTitle string
	Bars   []Bar
}

// Report holds everything rendered for one analysis.
type Report struct {
	Verdict  Verdict
	Metrics  []Metric
	Banner   Banner
	Progress Progress
	Chart    Chart
}

// NewReport builds the report for a probability pair.
func NewReport(p detector.Probabilities) Report {
	v := Decide(p)

	r := Report{
		Verdict: v,
		Metrics: []Metric{
			{Label: "AI-generated probability", Value: FormatPercent(p.AI)},
			{Label: "Human-written probability", Value: FormatPercent(p.Human)},
		},
		Chart: Chart{
			XTitle: "Source",
			YTitle: "Probability",
			Bars: []Bar{
				{Label: "AI (Fake)", Value: p.AI, Color: ColorAI},
				{Label: "Human (Real)", Value: p.Human, Color: ColorHuman},
			},
		},
	}

	switch v.Label {
	case LabelAI:
		r.Banner = Banner{
			Text:  fmt.Sprintf("This text is most likely AI-generated (confidence %s)", FormatPercent(v.Probability)),
			Level: LevelError,
		}
		r.Progress = Progress{Value: v.Probability, Label: "AI Probability", Color: ColorAI}

	default:
		r.Banner = Banner{
			Text:  fmt.Sprintf("This text is most likely human-written (confidence %s)", FormatPercent(v.Probability)),
			Level: LevelSuccess,
		}
		r.Progress = Progress{Value: v.Probability, Label: "Human Probability", Color: ColorHuman}
	}

	return r
}
