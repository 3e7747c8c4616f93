// Package libs installs and upgrades the llama.cpp shared libraries the
// detector runs the classifier on.
package libs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/aidetect/sdk/tools/defaults"
	"github.com/ardanlabs/aidetect/sdk/tools/downloader"
	"github.com/hybridgroup/yzma/pkg/download"
	"gopkg.in/yaml.v3"
)

const (
	installFile = "install.yaml"
	localFolder = "libraries"
	stageFolder = "staging"
)

// Logger represents a logger for capturing events.
type Logger func(ctx context.Context, msg string, args ...any)

// Install describes a llama.cpp build on disk. Latest is filled in from the
// release feed and is never written.
type Install struct {
	Version   string `yaml:"version"`
	Arch      string `yaml:"arch"`
	OS        string `yaml:"os"`
	Processor string `yaml:"processor"`
	Latest    string `yaml:"-"`
}

// Current reports if the install is the latest release for the settings.
func (in Install) Current(lib *Libs) bool {
	if in.Version == "" || in.Version != in.Latest {
		return false
	}

	return in.Arch == lib.arch.String() && in.OS == lib.os.String() && in.Processor == lib.processor.String()
}

// Libs manages the library folder.
type Libs struct {
	path         string
	arch         download.Arch
	os           download.OS
	processor    download.Processor
	allowUpgrade bool
	latest       func() (string, error)
}

// New constructs the library system from the host settings, using the cpu
// build unless AIDETECT_PROCESSOR says otherwise.
func New() (*Libs, error) {
	arch, err := defaults.Arch("")
	if err != nil {
		return nil, err
	}

	opSys, err := defaults.OS("")
	if err != nil {
		return nil, err
	}

	processor, err := defaults.Processor("")
	if err != nil {
		return nil, err
	}

	return NewWithSettings("", arch, opSys, processor, true)
}

// NewWithSettings constructs the library system. An empty libPath selects
// the libraries folder under the base path. When allowUpgrade is false an
// existing install is kept even if a newer release exists.
func NewWithSettings(libPath string, arch download.Arch, opSys download.OS, processor download.Processor, allowUpgrade bool) (*Libs, error) {
	lib := Libs{
		path:         Path(libPath),
		arch:         arch,
		os:           opSys,
		processor:    processor,
		allowUpgrade: allowUpgrade,
		latest:       download.LlamaLatestVersion,
	}

	return &lib, nil
}

// Path returns the location of the llama.cpp libraries. When the override is
// empty, the location under the default base path is used.
func Path(override string) string {
	if override != "" {
		return override
	}

	return filepath.Join(defaults.BaseDir(""), localFolder)
}

// LibsPath returns the location of the libraries.
func (lib *Libs) LibsPath() string {
	return lib.path
}

// Arch returns the architecture being installed for.
func (lib *Libs) Arch() download.Arch {
	return lib.arch
}

// OS returns the operating system being installed for.
func (lib *Libs) OS() download.OS {
	return lib.os
}

// Processor returns the hardware being installed for.
func (lib *Libs) Processor() download.Processor {
	return lib.processor
}

// Download makes sure a usable llama.cpp build is installed. A newer release
// replaces the install when upgrades are allowed. When the release feed or
// the download fails, an existing install is used.
func (lib *Libs) Download(ctx context.Context, log Logger) (Install, error) {
	log(ctx, "download-libraries", "status", "checking release", "arch", lib.arch, "os", lib.os, "processor", lib.processor)

	current, _ := lib.Installed()

	latest, err := lib.latest()
	if err != nil {
		if current.Version == "" {
			return Install{}, fmt.Errorf("download-libraries: no release information and nothing installed: %w", err)
		}

		log(ctx, "download-libraries", "status", "release feed unavailable, using installed", "current", current.Version)
		return current, nil
	}

	current.Latest = latest

	switch {
	case current.Current(lib):
		log(ctx, "download-libraries", "status", "already installed", "current", current.Version)
		return current, nil

	case current.Version != "" && !lib.allowUpgrade:
		log(ctx, "download-libraries", "status", "upgrade not allowed", "latest", latest, "current", current.Version)
		return current, nil
	}

	installed, err := lib.install(ctx, log, latest)
	if err != nil {
		log(ctx, "download-libraries", "status", "install failed", "ERROR", err)

		if current.Version == "" {
			return Install{}, fmt.Errorf("download-libraries: %q: %w", lib.path, err)
		}

		log(ctx, "download-libraries", "status", "using installed", "current", current.Version)
		return current, nil
	}

	log(ctx, "download-libraries", "status", "installed", "previous", current.Version, "current", installed.Version)

	return installed, nil
}

// Installed reads the install record from the library folder.
func (lib *Libs) Installed() (Install, error) {
	data, err := os.ReadFile(filepath.Join(lib.path, installFile))
	if err != nil {
		return Install{}, fmt.Errorf("installed: %w", err)
	}

	var in Install
	if err := yaml.Unmarshal(data, &in); err != nil {
		return Install{}, fmt.Errorf("installed: parse %s: %w", installFile, err)
	}

	return in, nil
}

// =============================================================================

func (lib *Libs) install(ctx context.Context, log Logger, version string) (Install, error) {
	stage := filepath.Join(lib.path, stageFolder)

	progress := func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool) {
		log(ctx, "download-libraries", "src", src, "mib", currentSize/downloader.SizeIntervalMIB, "total-mib", totalSize/downloader.SizeIntervalMIB, "mib-per-sec", fmt.Sprintf("%.2f", mibPerSec), "complete", complete)
	}

	pr := downloader.NewProgressReader(progress, downloader.SizeIntervalMIB10)

	log(ctx, "download-libraries", "status", "downloading", "version", version)

	if err := download.GetWithContext(ctx, lib.arch.String(), lib.os.String(), lib.processor.String(), version, stage, pr); err != nil {
		os.RemoveAll(stage)
		return Install{}, fmt.Errorf("install: %w", err)
	}

	if err := lib.promote(stage); err != nil {
		os.RemoveAll(stage)
		return Install{}, fmt.Errorf("install: %w", err)
	}

	in := Install{
		Version:   version,
		Arch:      lib.arch.String(),
		OS:        lib.os.String(),
		Processor: lib.processor.String(),
		Latest:    version,
	}

	if err := lib.record(in); err != nil {
		return Install{}, fmt.Errorf("install: %w", err)
	}

	return in, nil
}

// promote replaces the contents of the library folder with the staged files.
func (lib *Libs) promote(stage string) error {
	entries, err := os.ReadDir(lib.path)
	if err != nil {
		return fmt.Errorf("promote: %w", err)
	}

	for _, entry := range entries {
		if entry.Name() != stageFolder {
			os.RemoveAll(filepath.Join(lib.path, entry.Name()))
		}
	}

	staged, err := os.ReadDir(stage)
	if err != nil {
		return fmt.Errorf("promote: %w", err)
	}

	for _, entry := range staged {
		if err := os.Rename(filepath.Join(stage, entry.Name()), filepath.Join(lib.path, entry.Name())); err != nil {
			return fmt.Errorf("promote: %s: %w", entry.Name(), err)
		}
	}

	return os.RemoveAll(stage)
}

func (lib *Libs) record(in Install) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	if err := os.WriteFile(filepath.Join(lib.path, installFile), data, 0644); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return nil
}
