// Package defaults provides default values for the detector tooling.
package defaults

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hybridgroup/yzma/pkg/download"
)

var basePath = ".aidetect"

// BaseDir is the default base folder location for detector files. It will
// check the AIDETECT_BASE_PATH env var first and then default to the home
// directory if one can be identified. Last resort it will choose the current
// directory.
func BaseDir(override string) string {
	if override != "" {
		return override
	}

	if v := os.Getenv("AIDETECT_BASE_PATH"); v != "" {
		return v
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Sprintf("./%s", basePath)
	}

	return filepath.Join(homeDir, basePath)
}

// Arch will check the AIDETECT_ARCH var first and check it's value against the
// proper set of architectures. If that variable is not set, then runtime.GOARCH
// is used.
func Arch(override string) (download.Arch, error) {
	if override != "" {
		return download.ParseArch(override)
	}

	if v := os.Getenv("AIDETECT_ARCH"); v != "" {
		return download.ParseArch(v)
	}

	return download.ParseArch(runtime.GOARCH)
}

// OS will check the AIDETECT_OS var first and check it's value against the
// proper set of operating systems. If that variable is not set, then
// runtime.GOOS is used.
func OS(override string) (download.OS, error) {
	if override != "" {
		return download.ParseOS(override)
	}

	if v := os.Getenv("AIDETECT_OS"); v != "" {
		return download.ParseOS(v)
	}

	return download.ParseOS(runtime.GOOS)
}

// Processor will check the AIDETECT_PROCESSOR env var first and check it's
// value against the proper set of processor values (cpu, cuda, metal, vulkan).
// If that variable is not set, then cpu is used as the default.
func Processor(override string) (download.Processor, error) {
	if override != "" {
		return download.ParseProcessor(override)
	}

	if v := os.Getenv("AIDETECT_PROCESSOR"); v != "" {
		return download.ParseProcessor(v)
	}

	return download.CPU, nil
}

// HFToken returns the huggingface token used for gated model downloads.
func HFToken(override string) string {
	if override != "" {
		return override
	}

	return os.Getenv("AIDETECT_HF_TOKEN")
}
