package models

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Path returns file path information about a model.
type Path struct {
	ModelFile  string `yaml:"model_file"`
	Repo       string `yaml:"repo"`
	Downloaded bool   `yaml:"downloaded"`
}

// RetrievePath locates the physical location on disk and returns the full path.
func (m *Models) RetrievePath(modelID string) (Path, error) {
	index := m.loadIndex()

	modelID = strings.ToLower(modelID)

	mp, exists := index[modelID]
	if !exists {
		return Path{}, fmt.Errorf("retrieve-path: model %q not found", modelID)
	}

	return mp, nil
}

// List returns the ids of all the models in the index, sorted.
func (m *Models) List() []string {
	index := m.loadIndex()

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

func (m *Models) loadIndex() map[string]Path {
	m.biMutex.Lock()
	defer m.biMutex.Unlock()

	indexPath := filepath.Join(m.modelsPath, indexFile)

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return make(map[string]Path)
	}

	var index map[string]Path
	if err := yaml.Unmarshal(data, &index); err != nil {
		return make(map[string]Path)
	}

	if index == nil {
		index = make(map[string]Path)
	}

	return index
}
