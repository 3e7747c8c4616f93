package models

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/aidetect/sdk/tools/downloader"
)

// Logger represents a logger for capturing events.
type Logger func(ctx context.Context, msg string, args ...any)

// Download performs a complete workflow for downloading and installing
// the specified model. If the download fails and a copy of the model is
// already installed, the installed copy is used.
func (m *Models) Download(ctx context.Context, log Logger, modelURL string, hfToken string) (Path, error) {
	defer func() {
		if err := m.BuildIndex(); err != nil {
			log(ctx, "download-model", "status", "unable to create index", "ERROR", err)
		}
	}()

	modelFilePath, modelFileName, err := m.modelFilePathAndName(modelURL)
	if err != nil {
		return Path{}, fmt.Errorf("download-model: %w", err)
	}

	log(ctx, "download-model", "model-url", modelURL, "model-file", modelFileName)

	if size, err := fileSize(modelFileName); err == nil && size > 0 {
		log(ctx, "download-model", "status", "already exists")
		return m.path(modelFileName, false), nil
	}

	progress := func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool) {
		log(ctx, "download-model", "src", src, "mib", currentSize/downloader.SizeIntervalMIB, "total-mib", totalSize/downloader.SizeIntervalMIB, "mib-per-sec", fmt.Sprintf("%.2f", mibPerSec), "complete", complete)
	}

	downloaded, errOrg := downloader.Download(ctx, modelURL, modelFilePath,
		downloader.WithToken(hfToken),
		downloader.WithProgress(progress, downloader.SizeIntervalMIB100),
	)

	if errOrg != nil {
		log(ctx, "download-model", "ERROR", errOrg, "model-url", modelURL)

		size, err := fileSize(modelFileName)
		if err != nil || size == 0 {
			os.Remove(modelFileName)
			return Path{}, fmt.Errorf("download-model: unable to download model: %w", errOrg)
		}

		log(ctx, "download-model", "status", "using installed version of model")
		return m.path(modelFileName, false), nil
	}

	log(ctx, "download-model", "status", "downloaded", "model-file", modelFileName)

	return m.path(modelFileName, downloaded), nil
}

func (m *Models) path(modelFileName string, downloaded bool) Path {
	rel, err := filepath.Rel(m.modelsPath, filepath.Dir(modelFileName))
	if err != nil {
		rel = ""
	}

	return Path{
		ModelFile:  modelFileName,
		Repo:       filepath.ToSlash(rel),
		Downloaded: downloaded,
	}
}

// modelFilePathAndName maps a huggingface resolve url like
// https://huggingface.co/<org>/<repo>/resolve/main/<file>.gguf onto
// <models>/<org>/<repo>/<file>.gguf.
func (m *Models) modelFilePathAndName(modelFileURL string) (string, string, error) {
	mURL, err := url.Parse(modelFileURL)
	if err != nil {
		return "", "", fmt.Errorf("model-file-path-and-name: unable to parse fileURL: %w", err)
	}

	parts := strings.Split(mURL.Path, "/")
	if len(parts) < 4 || path.Ext(mURL.Path) != ".gguf" {
		return "", "", fmt.Errorf("model-file-path-and-name: invalid huggingface url: %q", mURL.Path)
	}

	modelFilePath := filepath.Join(m.modelsPath, parts[1], parts[2])
	modelFileName := filepath.Join(modelFilePath, path.Base(mURL.Path))

	return modelFilePath, modelFileName, nil
}

// =============================================================================

func fileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func extractModelID(modelFileName string) string {
	return strings.TrimSuffix(path.Base(modelFileName), path.Ext(modelFileName))
}
