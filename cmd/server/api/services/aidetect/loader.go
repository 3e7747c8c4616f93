package aidetect

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/detector/model"
	"github.com/ardanlabs/aidetect/sdk/tools/defaults"
	"github.com/ardanlabs/aidetect/sdk/tools/libs"
	"github.com/ardanlabs/aidetect/sdk/tools/models"
	"github.com/sethvargo/go-retry"
)

type loaderConfig struct {
	ModelID              string
	ModelFile            string
	ModelURL             string
	Device               string
	ContextWindow        int
	IgnoreIntegrityCheck bool
	BasePath             string
	LibPath              string
	Arch                 string
	OS                   string
	Processor            string
	HfToken              string
	AllowUpgrade         bool
	LlamaLog             int
	DownloadRetries      uint64
}

// loader performs the slow first-use work: the llama.cpp libraries, the
// model file and the model itself.
type loader struct {
	log    *logger.Logger
	cfg    loaderConfig
	libs   *libs.Libs
	models *models.Models
}

func newLoader(log *logger.Logger, cfg loaderConfig) (*loader, error) {
	arch, err := defaults.Arch(cfg.Arch)
	if err != nil {
		return nil, err
	}

	opSys, err := defaults.OS(cfg.OS)
	if err != nil {
		return nil, err
	}

	processor, err := defaults.Processor(cfg.Processor)
	if err != nil {
		return nil, err
	}

	lbs, err := libs.NewWithSettings(cfg.LibPath, arch, opSys, processor, cfg.AllowUpgrade)
	if err != nil {
		return nil, fmt.Errorf("unable to create libs api: %w", err)
	}

	mdls, err := models.NewWithPaths(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("unable to create models system: %w", err)
	}

	cfg.HfToken = defaults.HFToken(cfg.HfToken)

	l := loader{
		log:    log,
		cfg:    cfg,
		libs:   lbs,
		models: mdls,
	}

	return &l, nil
}

func (l *loader) load(ctx context.Context) (detector.Model, error) {
	l.log.Info(ctx, "model-load", "status", "installing/updating libraries", "libPath", l.libs.LibsPath(), "arch", l.libs.Arch(), "os", l.libs.OS(), "processor", l.libs.Processor())

	if _, err := l.libs.Download(ctx, l.log.Info); err != nil {
		return nil, fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	if err := detector.Init(detector.WithLibPath(l.libs.LibsPath()), detector.WithLogLevel(detector.LogLevel(l.cfg.LlamaLog))); err != nil {
		return nil, fmt.Errorf("installation invalid: %w", err)
	}

	modelFile, err := l.modelFile(ctx)
	if err != nil {
		return nil, err
	}

	l.log.Info(ctx, "model-load", "status", "loading model", "model-id", l.cfg.ModelID, "model-file", modelFile)

	mdl, err := model.NewModel(ctx, model.Config{
		Log:                  l.log.Info,
		ModelFile:            modelFile,
		Device:               l.cfg.Device,
		ContextWindow:        l.cfg.ContextWindow,
		IgnoreIntegrityCheck: l.cfg.IgnoreIntegrityCheck,
	})

	if err != nil {
		return nil, err
	}

	return mdl, nil
}

// modelFile resolves the model file in order: an explicit file, a download
// url, then the local index by model id.
func (l *loader) modelFile(ctx context.Context) (string, error) {
	if l.cfg.ModelFile != "" {
		return l.cfg.ModelFile, nil
	}

	if l.cfg.ModelURL != "" {
		return l.download(ctx)
	}

	if err := l.models.BuildIndex(); err != nil {
		l.log.Info(ctx, "model-load", "status", "unable to build index", "ERROR", err)
	}

	for _, id := range []string{l.cfg.ModelID, path.Base(l.cfg.ModelID)} {
		if mp, err := l.models.RetrievePath(id); err == nil {
			return mp.ModelFile, nil
		}
	}

	return "", fmt.Errorf("model %q is not installed, set a model file or url", l.cfg.ModelID)
}

func (l *loader) download(ctx context.Context) (string, error) {
	var mp models.Path

	b := retry.WithMaxRetries(l.cfg.DownloadRetries, retry.NewExponential(time.Second))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		mp, err = l.models.Download(ctx, l.log.Info, l.cfg.ModelURL, l.cfg.HfToken)
		if err != nil {
			l.log.Info(ctx, "model-load", "status", "model download failed, will retry", "ERROR", err)
			return retry.RetryableError(err)
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	return mp.ModelFile, nil
}
