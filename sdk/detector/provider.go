package detector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/aidetect/sdk/detector/model"
	"github.com/ardanlabs/aidetect/sdk/observ/metrics"
	"github.com/ardanlabs/aidetect/sdk/observ/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Model represents the behavior the detector needs from a loaded classifier.
type Model interface {
	Encode(text string, maxTokens int) (model.Encoding, error)
	Forward(ctx context.Context, enc model.Encoding) ([]float32, error)
	Unload(ctx context.Context) error
}

// LoadFunc performs the expensive work of producing a model.
type LoadFunc func(ctx context.Context) (Model, error)

// Provider hands out a single shared model instance. The model is loaded on
// first use and the outcome, model or error, is kept for the life of the
// provider.
type Provider struct {
	modelID string
	load    LoadFunc
	once    sync.Once
	model   Model
	err     error
	loaded  atomic.Bool
	failed  atomic.Bool
}

// NewProvider constructs a provider for the specified model id.
func NewProvider(modelID string, load LoadFunc) *Provider {
	return &Provider{
		modelID: modelID,
		load:    load,
	}
}

// ModelID returns the identifier of the model being served.
func (p *Provider) ModelID() string {
	return p.modelID
}

// Loaded reports if the model has been successfully loaded.
func (p *Provider) Loaded() bool {
	return p.loaded.Load()
}

// LoadErr returns the load failure once a load has failed, otherwise nil.
func (p *Provider) LoadErr() error {
	if !p.failed.Load() {
		return nil
	}

	return p.err
}

// Load returns the shared model, loading it on the first call. Concurrent
// first callers wait on the same load. A failure is returned as a
// *LoadError, on this and every later call. The load is not cancelled when
// the caller's context is, so a caller going away never becomes the kept
// failure.
func (p *Provider) Load(ctx context.Context) (Model, error) {
	p.once.Do(func() {
		ctx, span := otel.AddSpan(context.WithoutCancel(ctx), "model-load",
			attribute.String("model-id", p.modelID),
		)
		defer span.End()

		start := time.Now()

		mdl, err := p.callLoad(ctx)
		if err != nil {
			p.err = &LoadError{ModelID: p.modelID, Err: err}
			p.failed.Store(true)
			return
		}

		metrics.AddModelLoadTime(time.Since(start))

		p.model = mdl
		p.loaded.Store(true)
	})

	if p.err != nil {
		return nil, p.err
	}

	return p.model, nil
}

func (p *Provider) callLoad(ctx context.Context) (mdl Model, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if p.load == nil {
		return nil, fmt.Errorf("no load function configured")
	}

	mdl, err = p.load(ctx)
	if err != nil {
		return nil, err
	}

	if mdl == nil {
		return nil, fmt.Errorf("load function returned no model")
	}

	return mdl, nil
}

// Unload releases the model if one was loaded. It is meant for process
// shutdown.
func (p *Provider) Unload(ctx context.Context) error {
	if !p.loaded.CompareAndSwap(true, false) {
		return nil
	}

	if err := p.model.Unload(ctx); err != nil {
		return fmt.Errorf("unload: %w", err)
	}

	return nil
}
