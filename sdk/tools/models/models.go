// Package models provides support for tooling around model management.
package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/aidetect/sdk/tools/defaults"
	"gopkg.in/yaml.v3"
)

const (
	localFolder = "models"
	indexFile   = ".index.yaml"
)

// Models manages the model system.
type Models struct {
	modelsPath string
	biMutex    sync.Mutex
}

// New constructs the models system using defaults paths.
func New() (*Models, error) {
	return NewWithPaths("")
}

// NewWithPaths constructs the models system, If the basePath is empty, the
// default location is used.
func NewWithPaths(basePath string) (*Models, error) {
	basePath = defaults.BaseDir(basePath)

	modelPath := filepath.Join(basePath, localFolder)

	if err := os.MkdirAll(modelPath, 0755); err != nil {
		return nil, fmt.Errorf("creating models directory: %w", err)
	}

	m := Models{
		modelsPath: modelPath,
	}

	return &m, nil
}

// Path returns the location of the models path.
func (m *Models) Path() string {
	return m.modelsPath
}

// BuildIndex builds the model index for fast model access. Models are stored
// as <org>/<repo>/<file>.gguf under the models path.
func (m *Models) BuildIndex() error {
	m.biMutex.Lock()
	defer m.biMutex.Unlock()

	if err := removeEmptyDirs(m.modelsPath); err != nil {
		return fmt.Errorf("build-index: remove-empty-dirs: %w", err)
	}

	entries, err := os.ReadDir(m.modelsPath)
	if err != nil {
		return fmt.Errorf("build-index: reading models directory: %w", err)
	}

	index := make(map[string]Path)

	for _, orgEntry := range entries {
		if !orgEntry.IsDir() {
			continue
		}

		org := orgEntry.Name()

		repoEntries, err := os.ReadDir(filepath.Join(m.modelsPath, org))
		if err != nil {
			continue
		}

		for _, repoEntry := range repoEntries {
			if !repoEntry.IsDir() {
				continue
			}

			repo := repoEntry.Name()

			fileEntries, err := os.ReadDir(filepath.Join(m.modelsPath, org, repo))
			if err != nil {
				continue
			}

			for _, fileEntry := range fileEntries {
				if fileEntry.IsDir() || filepath.Ext(fileEntry.Name()) != ".gguf" {
					continue
				}

				modelID := strings.ToLower(extractModelID(fileEntry.Name()))

				index[modelID] = Path{
					ModelFile:  filepath.Join(m.modelsPath, org, repo, fileEntry.Name()),
					Repo:       org + "/" + repo,
					Downloaded: true,
				}
			}
		}
	}

	indexData, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("build-index: marshal index: %w", err)
	}

	indexPath := filepath.Join(m.modelsPath, indexFile)
	if err := os.WriteFile(indexPath, indexData, 0644); err != nil {
		return fmt.Errorf("build-index: write index file: %w", err)
	}

	return nil
}

func removeEmptyDirs(modelBasePath string) error {
	var dirs []string

	err := filepath.WalkDir(modelBasePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != modelBasePath {
			dirs = append(dirs, path)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("walking directory tree: %w", err)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			continue
		}

		if len(entries) == 0 {
			os.Remove(dirs[i])
		}
	}

	return nil
}
