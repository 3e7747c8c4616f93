package detectapp

import (
	"bytes"
	"embed"
	"fmt"
	"math"

	"github.com/ardanlabs/aidetect/sdk/detector/verdict"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"
)

//go:embed templates/page.html
var templates embed.FS

// Chart geometry in svg user units.
const (
	chartWidth  = 480
	chartHeight = 260
	plotTop     = 20
	plotBottom  = 220
	plotLeft    = 60
	barWidth    = 120
)

// Renderer turns a view into html using the embedded page template.
type Renderer struct {
	tmpl *exec.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	source, err := templates.ReadFile("templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("new-renderer: read template: %w", err)
	}

	loader, err := loaders.NewFileSystemLoader("")
	if err != nil {
		return nil, fmt.Errorf("new-renderer: loader: %w", err)
	}

	shiftedLoader, err := loaders.NewShiftedLoader("page", bytes.NewReader(source), loader)
	if err != nil {
		return nil, fmt.Errorf("new-renderer: shifted loader: %w", err)
	}

	env := exec.Environment{
		Context:           builtins.GlobalFunctions.Inherit(),
		Filters:           builtins.Filters,
		Tests:             builtins.Tests,
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
	}

	tmpl, err := exec.NewTemplate("page", gonja.DefaultConfig, shiftedLoader, &env)
	if err != nil {
		return nil, fmt.Errorf("new-renderer: parse template: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the page template for the view.
func (rnd *Renderer) Render(v View) ([]byte, error) {
	s, err := rnd.tmpl.ExecuteToString(exec.NewContext(toTemplateData(v)))
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return []byte(s), nil
}

// =============================================================================

func toTemplateData(v View) map[string]any {
	data := map[string]any{
		"model_id": v.ModelID,
		"loading":  v.Loading,
		"halted":   v.Halted,
		"error":    v.Error,
		"warning":  v.Warning,
		"text":     v.Text,
		"report":   nil,
	}

	if v.Report != nil {
		data["report"] = toReportData(*v.Report)
	}

	return data
}

func toReportData(r verdict.Report) map[string]any {
	metrics := make([]map[string]any, len(r.Metrics))
	for i, m := range r.Metrics {
		metrics[i] = map[string]any{
			"label": m.Label,
			"value": m.Value,
		}
	}

	return map[string]any{
		"verdict": string(r.Verdict.Label),
		"metrics": metrics,
		"banner": map[string]any{
			"text":  r.Banner.Text,
			"level": r.Banner.Level,
		},
		"progress": map[string]any{
			"label":   r.Progress.Label,
			"value":   fmt.Sprintf("%.4f", r.Progress.Value),
			"percent": verdict.FormatPercent(r.Progress.Value),
			"width":   fmt.Sprintf("%.2f%%", clamp(r.Progress.Value)*100),
			"color":   r.Progress.Color,
		},
		"chart": toChartData(r.Chart),
	}
}

func toChartData(c verdict.Chart) map[string]any {
	plotHeight := float64(plotBottom - plotTop)
	slot := float64(chartWidth-plotLeft) / float64(max(len(c.Bars), 1))

	bars := make([]map[string]any, len(c.Bars))
	for i, b := range c.Bars {
		h := math.Round(clamp(b.Value) * plotHeight)
		x := float64(plotLeft) + slot*float64(i) + (slot-barWidth)/2

		bars[i] = map[string]any{
			"label":   b.Label,
			"color":   b.Color,
			"percent": verdict.FormatPercent(b.Value),
			"x":       fmt.Sprintf("%.0f", x),
			"y":       fmt.Sprintf("%.0f", float64(plotBottom)-h),
			"height":  fmt.Sprintf("%.0f", h),
			"width":   barWidth,
			"cx":      fmt.Sprintf("%.0f", x+barWidth/2),
		}
	}

	ticks := make([]map[string]any, 0, 5)
	for i := 0; i <= 4; i++ {
		v := float64(i) / 4
		ticks = append(ticks, map[string]any{
			"label": fmt.Sprintf("%.2f", v),
			"y":     fmt.Sprintf("%.0f", float64(plotBottom)-v*plotHeight),
		})
	}

	return map[string]any{
		"x_title":     c.XTitle,
		"y_title":     c.YTitle,
		"bars":        bars,
		"ticks":       ticks,
		"width":       chartWidth,
		"height":      chartHeight,
		"plot_left":   plotLeft,
		"plot_right":  chartWidth,
		"plot_top":    plotTop,
		"plot_bottom": plotBottom,
		"label_y":     plotBottom + 18,
		"title_y":     chartHeight - 4,
		"tick_x":      plotLeft - 6,
		"mid_x":       (plotLeft + chartWidth) / 2,
		"mid_y":       (plotTop + plotBottom) / 2,
	}
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}

	return v
}
