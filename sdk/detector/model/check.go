package model

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CheckModel checks the model file against the git-lfs pointer stored next to
// it in a sha folder (sha/<file>). The pointer carries the expected size and
// sha256 of the file. If no pointer exists, this check returns no error.
func CheckModel(modelFile string, checkSHA bool) error {
	dir := filepath.Dir(modelFile)
	base := filepath.Base(modelFile)
	shaFile := filepath.Join(dir, "sha", base)

	data, err := os.Open(shaFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("check-model: opening sha file: %w", err)
	}
	defer data.Close()

	var expectedSHA string
	var expectedSize int64

	scanner := bufio.NewScanner(data)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "oid sha256:"):
			expectedSHA = strings.TrimPrefix(line, "oid sha256:")

		case strings.HasPrefix(line, "size "):
			sizeStr := strings.TrimPrefix(line, "size ")
			expectedSize, err = strconv.ParseInt(sizeStr, 10, 64)
			if err != nil {
				return fmt.Errorf("check-model: parsing size from sha file: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("check-model: reading sha file: %w", err)
	}

	info, err := os.Stat(modelFile)
	if err != nil {
		return fmt.Errorf("check-model: stat model file: %w", err)
	}

	if info.Size() != expectedSize {
		return fmt.Errorf("check-model: size mismatch: expected %d, got %d", expectedSize, info.Size())
	}

	if !checkSHA || expectedSHA == "" {
		return nil
	}

	actualSHA, err := fileSHA256(modelFile)
	if err != nil {
		return fmt.Errorf("check-model: %w", err)
	}

	if actualSHA != expectedSHA {
		return fmt.Errorf("check-model: sha256 mismatch: expected %s, got %s", expectedSHA, actualSHA)
	}

	return nil
}

func fileSHA256(fileName string) (string, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return "", fmt.Errorf("opening model file for sha check: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("computing sha256: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
