// Package model provides the low-level api for running a sequence
// classification model through llama.cpp.
package model

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Encoding represents the tokenized form of one input, ready for a single
// forward pass with a batch size of one.
type Encoding struct {
	Tokens    []llama.Token
	Original  int
	Truncated bool
}

// Truncate keeps at most maxTokens tokens from the start of the stream. A
// maxTokens of 0 or less leaves the tokens untouched.
func Truncate(tokens []llama.Token, maxTokens int) Encoding {
	enc := Encoding{
		Tokens:   tokens,
		Original: len(tokens),
	}

	if maxTokens > 0 && len(tokens) > maxTokens {
		enc.Tokens = tokens[:maxTokens]
		enc.Truncated = true
	}

	return enc
}

// =============================================================================

// Model represents a classifier model and provides a low-level API for
// working with it.
type Model struct {
	cfg         Config
	log         Logger
	model       llama.Model
	vocab       llama.Vocab
	ctxParams   llama.ContextParams
	modelInfo   ModelInfo
	activeCalls atomic.Int32
}

// NewModel loads the classifier weights from disk. The llama.cpp library must
// already be loaded.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	l := cfg.Log
	if cfg.Log == nil {
		l = func(ctx context.Context, msg string, args ...any) {}
	}

	if err := validateConfig(cfg, l); err != nil {
		return nil, fmt.Errorf("new-model: unable to validate config: %w", err)
	}

	mparams := llama.ModelDefaultParams()
	if cfg.Device != "" {
		dev := llama.GGMLBackendDeviceByName(cfg.Device)
		if dev == 0 {
			return nil, fmt.Errorf("new-model: unknown device: %s", cfg.Device)
		}
		mparams.SetDevices([]llama.GGMLBackendDevice{dev})
	}

	l(ctx, "new-model", "status", "loading model", "model-file", cfg.ModelFile)

	start := time.Now()

	mdl, err := llama.ModelLoadFromFile(cfg.ModelFile, mparams)
	if err != nil {
		return nil, fmt.Errorf("new-model: unable to load model: %w", err)
	}

	cfg = adjustConfig(cfg, mdl)
	modelInfo := toModelInfo(cfg, mdl)

	l(ctx, "new-model", "status", "model loaded", "model-id", modelInfo.ID, "desc", modelInfo.Desc, "size", humanize.Bytes(modelInfo.Size), "context-window", cfg.ContextWindow, "labels", modelInfo.Labels, "duration", time.Since(start).String())

	m := Model{
		cfg:       cfg,
		log:       l,
		model:     mdl,
		vocab:     llama.ModelGetVocab(mdl),
		ctxParams: modelCtxParams(cfg),
		modelInfo: modelInfo,
	}

	return &m, nil
}

// Config returns the configuration in use after defaults were applied.
func (m *Model) Config() Config {
	return m.cfg
}

// ModelInfo returns the model's card information.
func (m *Model) ModelInfo() ModelInfo {
	return m.modelInfo
}

// Encode tokenizes the text with the model's special tokens added and
// truncates the result to maxTokens. The context window is also a hard limit.
func (m *Model) Encode(text string, maxTokens int) (Encoding, error) {
	if maxTokens <= 0 || maxTokens > m.cfg.ContextWindow {
		maxTokens = m.cfg.ContextWindow
	}

	tokens := llama.Tokenize(m.vocab, text, true, true)
	if len(tokens) == 0 {
		return Encoding{}, fmt.Errorf("encode: text produced no tokens")
	}

	return Truncate(tokens, maxTokens), nil
}

// Forward runs one forward pass over the encoding and returns the raw
// classifier outputs (logits), one per label. Nothing is sampled, so the
// same encoding always produces the same logits.
func (m *Model) Forward(ctx context.Context, enc Encoding) ([]float32, error) {
	if len(enc.Tokens) == 0 {
		return nil, fmt.Errorf("forward: encoding has no tokens")
	}

	m.activeCalls.Add(1)
	defer m.activeCalls.Add(-1)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	default:
	}

	lctx, err := llama.InitFromModel(m.model, m.ctxParams)
	if err != nil {
		return nil, fmt.Errorf("forward: unable to init from model: %w", err)
	}

	defer func() {
		llama.Synchronize(lctx)
		llama.Free(lctx)
	}()

	batch := llama.BatchGetOne(enc.Tokens)

	ret, err := llama.Decode(lctx, batch)
	if err != nil {
		return nil, fmt.Errorf("forward: decode failed: %w", err)
	}

	if ret != 0 {
		return nil, fmt.Errorf("forward: decode returned non-zero: %d", ret)
	}

	raw, err := llama.GetEmbeddingsSeq(lctx, 0, int32(m.cfg.NumLabels))
	if err != nil {
		return nil, fmt.Errorf("forward: unable to get classifier output: %w", err)
	}

	if len(raw) < m.cfg.NumLabels {
		return nil, fmt.Errorf("forward: expected %d classifier outputs, got %d", m.cfg.NumLabels, len(raw))
	}

	// The llama memory is invalidated once the context is freed.
	logits := make([]float32, m.cfg.NumLabels)
	copy(logits, raw)

	return logits, nil
}

// Unload releases the model weights. Calls still running are given until
// the context deadline to finish.
func (m *Model) Unload(ctx context.Context) error {
	if _, exists := ctx.Deadline(); !exists {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	for m.activeCalls.Load() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("unload: cannot unload %d active calls: %w", m.activeCalls.Load(), ctx.Err())

		case <-time.After(100 * time.Millisecond):
		}
	}

	llama.ModelFree(m.model)
	llama.BackendFree()

	return nil
}
