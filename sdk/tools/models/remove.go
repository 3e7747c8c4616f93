package models

import (
	"fmt"
	"os"
)

// Remove remove the specified file from the models directory.
func (m *Models) Remove(mp Path) (err error) {
	defer func() {
		if errDfr := m.BuildIndex(); errDfr != nil && err == nil {
			err = errDfr
		}
	}()

	if err := os.Remove(mp.ModelFile); err != nil {
		return fmt.Errorf("remove-model: unable to remove model: %q: %w", mp.ModelFile, err)
	}

	return nil
}
