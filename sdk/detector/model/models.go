package model

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// ModelInfo represents the model's card information.
type ModelInfo struct {
	ID         string
	Desc       string
	Size       uint64
	HasEncoder bool
	Labels     []string
	Metadata   map[string]string
}

func toModelInfo(cfg Config, model llama.Model) ModelInfo {
	count := llama.ModelMetaCount(model)
	metadata := make(map[string]string)

	for i := range count {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					return
				}
			}()

			key, ok := llama.ModelMetaKeyByIndex(model, i)
			if !ok {
				return
			}

			value, ok := llama.ModelMetaValStrByIndex(model, i)
			if !ok {
				return
			}

			metadata[key] = value
		}()
	}

	filename := filepath.Base(cfg.ModelFile)

	return ModelInfo{
		ID:         strings.TrimSuffix(filename, path.Ext(filename)),
		Desc:       llama.ModelDesc(model),
		Size:       llama.ModelSize(model),
		HasEncoder: llama.ModelHasEncoder(model),
		Labels:     ClassifierLabels(metadata),
		Metadata:   metadata,
	}
}

// ClassifierLabels returns the output label names recorded in the GGUF
// metadata (<arch>.classifier.output_labels), in output order. Nil is
// returned when the model does not carry them.
func ClassifierLabels(metadata map[string]string) []string {
	for key, value := range metadata {
		if !strings.HasSuffix(key, ".classifier.output_labels") {
			continue
		}

		value = strings.Trim(value, "[]")
		if value == "" {
			return nil
		}

		var labels []string
		for label := range strings.SplitSeq(value, ",") {
			labels = append(labels, strings.Trim(strings.TrimSpace(label), `"'`))
		}

		return labels
	}

	return nil
}
