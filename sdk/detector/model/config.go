package model

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hybridgroup/yzma/pkg/llama"
)

const (
	defContextWindow = 512
	defNumLabels     = 2
)

// Logger provides a function for logging messages from different APIs.
type Logger func(ctx context.Context, msg string, args ...any)

// =============================================================================

// Config represents model level configuration. The defaults are used when
// these values are set to 0.
//
// ModelFile is the path to the GGUF classifier file. This is mandatory to
// provide.
//
// Device is the device to use for the model. If not set, the default device
// will be used. To see what devices are available, run the following command
// which will be found where you installed llama.cpp.
// $ llama-bench --list-devices
//
// ContextWindow is the maximum number of tokens a single forward pass can
// see. Encoder models process the whole input in one physical batch, so the
// batch sizes are pinned to this value. When set to 0, the model's trained
// context length is used, falling back to 512.
//
// NThreads is the number of threads to use for the forward pass. When set to
// 0, the default llama.cpp value is used.
//
// NumLabels is the number of classifier outputs read after a forward pass.
// When set to 0, the default value is 2.
//
// IgnoreIntegrityCheck is a boolean that determines if the system should
// ignore a model integrity check before trying to use it.
type Config struct {
	Log                  Logger
	ModelFile            string
	Device               string
	ContextWindow        int
	NThreads             int
	NThreadsBatch        int
	NumLabels            int
	IgnoreIntegrityCheck bool
}

func validateConfig(cfg Config, log Logger) error {
	if cfg.ModelFile == "" {
		return fmt.Errorf("validate-config: model file is required")
	}

	if !cfg.IgnoreIntegrityCheck {
		log(context.Background(), "checking-model-integrity", "model-file", cfg.ModelFile)

		if err := CheckModel(cfg.ModelFile, true); err != nil {
			return fmt.Errorf("validate-config: checking-model-integrity: %w", err)
		}
	}

	return nil
}

func adjustConfig(cfg Config, model llama.Model) Config {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defContextWindow

		if v, found := searchModelMeta(model, "context_length"); found {
			if ctxLen, err := strconv.Atoi(v); err == nil && ctxLen > 0 {
				cfg.ContextWindow = ctxLen
			}
		}
	}

	if cfg.NumLabels <= 0 {
		cfg.NumLabels = defNumLabels
	}

	if cfg.NThreads < 0 {
		cfg.NThreads = 0
	}

	if cfg.NThreadsBatch < 0 {
		cfg.NThreadsBatch = 0
	}

	return cfg
}

func modelCtxParams(cfg Config) llama.ContextParams {
	ctxParams := llama.ContextDefaultParams()

	// Classifier heads are read back through the pooled sequence output.
	ctxParams.Embeddings = 1

	ctxParams.NCtx = uint32(cfg.ContextWindow)
	ctxParams.NBatch = uint32(cfg.ContextWindow)
	ctxParams.NUbatch = uint32(cfg.ContextWindow)
	ctxParams.NThreads = int32(cfg.NThreads)
	ctxParams.NThreadsBatch = int32(cfg.NThreadsBatch)

	return ctxParams
}

func searchModelMeta(model llama.Model, suffix string) (string, bool) {
	count := llama.ModelMetaCount(model)

	for i := range count {
		key, ok := llama.ModelMetaKeyByIndex(model, i)
		if !ok || !hasKeySuffix(key, suffix) {
			continue
		}

		value, ok := llama.ModelMetaValStrByIndex(model, i)
		if !ok {
			continue
		}

		return value, true
	}

	return "", false
}

func hasKeySuffix(key string, suffix string) bool {
	return len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix
}
