// Package detector provides support for classifying text as AI generated or
// human written using a sequence classification model.
package detector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/aidetect/sdk/detector/model"
	"github.com/ardanlabs/aidetect/sdk/observ/metrics"
	"github.com/ardanlabs/aidetect/sdk/observ/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// MinTextLength is the minimum number of characters, after trimming, an
	// input needs before it is analyzed.
	MinTextLength = 10

	// MaxTokens is the maximum number of tokens given to the classifier.
	// Longer inputs are truncated.
	MaxTokens = 512
)

// Logger provides a function for logging messages from different APIs.
type Logger func(ctx context.Context, msg string, args ...any)

// FmtLogger provides a basic logger that writes to stdout.
func FmtLogger(ctx context.Context, msg string, args ...any) {
	fmt.Print(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Printf(" %v[%v]", args[i], args[i+1])
		}
	}
	fmt.Println()
}

// =============================================================================

// Config represents the detector configuration. Labels defaults to
// DefaultLabels when both indices are zero, MaxTokens to 512 and Instances
// to 1.
type Config struct {
	Log       Logger
	Labels    Labels
	MaxTokens int
	Instances int
}

// Detector runs texts through the provider's model and returns the AI/Human
// probability pair.
type Detector struct {
	provider *Provider
	log      Logger
	labels   Labels
	maxTkns  int
	sem      chan struct{}
	calls    atomic.Int64
}

// New constructs a detector over the provider.
func New(provider *Provider, cfg Config) (*Detector, error) {
	if provider == nil {
		return nil, fmt.Errorf("new: provider is required")
	}

	if cfg.Labels == (Labels{}) {
		cfg.Labels = DefaultLabels
	}

	if err := cfg.Labels.Validate(2); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = MaxTokens
	}

	if cfg.Instances <= 0 {
		cfg.Instances = 1
	}

	l := cfg.Log
	if l == nil {
		l = func(ctx context.Context, msg string, args ...any) {}
	}

	d := Detector{
		provider: provider,
		log:      l,
		labels:   cfg.Labels,
		maxTkns:  cfg.MaxTokens,
		sem:      make(chan struct{}, cfg.Instances),
	}

	return &d, nil
}

// ModelID returns the identifier of the model being used.
func (d *Detector) ModelID() string {
	return d.provider.ModelID()
}

// Calls returns the number of times Infer has been called.
func (d *Detector) Calls() int64 {
	return d.calls.Load()
}

// Infer classifies the text. A load failure is returned as a *LoadError and
// any failure after the model is loaded as an *InferenceError. Text shorter
// than MinTextLength returns ErrTextTooShort.
func (d *Detector) Infer(ctx context.Context, text string) (Probabilities, error) {
	d.calls.Add(1)

	if err := ValidateText(text); err != nil {
		metrics.AddRejections()
		return Probabilities{}, err
	}

	mdl, err := d.provider.Load(ctx)
	if err != nil {
		return Probabilities{}, err
	}

	if err := d.acquire(ctx); err != nil {
		return Probabilities{}, &InferenceError{Stage: StageForward, Err: err}
	}
	defer d.release()

	ctx, span := otel.AddSpan(ctx, "detector-infer",
		attribute.String("model-id", d.provider.ModelID()),
	)
	defer span.End()

	return d.infer(ctx, mdl, text)
}

func (d *Detector) infer(ctx context.Context, mdl Model, text string) (p Probabilities, err error) {
	stage := StageEncode

	defer func() {
		if rec := recover(); rec != nil {
			metrics.AddPanics()
			p = Probabilities{}
			err = &InferenceError{Stage: stage, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	enc, err := mdl.Encode(text, d.maxTkns)
	if err != nil {
		return Probabilities{}, &InferenceError{Stage: stage, Err: err}
	}

	if len(enc.Tokens) > d.maxTkns {
		enc = model.Truncate(enc.Tokens, d.maxTkns)
	}

	if enc.Truncated {
		metrics.AddTruncations()
		d.log(ctx, "detector-infer", "status", "input truncated", "original-tokens", enc.Original, "max-tokens", d.maxTkns)
	}

	// -------------------------------------------------------------------------

	stage = StageForward

	start := time.Now()

	logits, err := mdl.Forward(ctx, enc)
	if err != nil {
		return Probabilities{}, &InferenceError{Stage: stage, Err: err}
	}

	elapsed := time.Since(start)

	metrics.AddInferences()
	metrics.AddInferenceTime(elapsed)

	var tps float64
	if elapsed > 0 {
		tps = float64(len(enc.Tokens)) / elapsed.Seconds()
	}
	metrics.AddDetectionUsage(len(enc.Tokens), enc.Original, tps)

	// -------------------------------------------------------------------------

	stage = StageDecode

	p, err = d.labels.Map(model.Softmax(logits))
	if err != nil {
		return Probabilities{}, &InferenceError{Stage: stage, Err: err}
	}

	d.log(ctx, "detector-infer", "tokens", len(enc.Tokens), "ai", p.AI, "human", p.Human, "duration", elapsed.String())

	return p, nil
}

func (d *Detector) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()

	case d.sem <- struct{}{}:
		return nil
	}
}

func (d *Detector) release() {
	<-d.sem
}
