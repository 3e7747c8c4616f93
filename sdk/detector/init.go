package detector

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/ardanlabs/aidetect/sdk/tools/libs"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// LogLevel represents the logging level of the llama.cpp backend.
type LogLevel int

// Set of logging levels supported by llama.cpp.
const (
	LogSilent LogLevel = iota + 1
	LogNormal
)

var (
	initOnce        sync.Once
	initErr         error
	libraryLocation string
)

type initOptions struct {
	libPath  string
	logLevel LogLevel
}

// InitOption represents options for configuring Init.
type InitOption func(*initOptions)

// WithLibPath sets a custom library path.
func WithLibPath(libPath string) InitOption {
	return func(o *initOptions) {
		o.libPath = libPath
	}
}

// WithLogLevel sets the log level for the backend.
func WithLogLevel(logLevel LogLevel) InitOption {
	return func(o *initOptions) {
		o.logLevel = logLevel
	}
}

// Init loads the llama.cpp shared libraries. Only the first call does any
// work, later calls return the first result.
func Init(opts ...InitOption) error {
	initOnce.Do(func() {
		var o initOptions
		for _, opt := range opts {
			opt(&o)
		}

		libPath := libs.Path(o.libPath)

		// Windows uses PATH for DLL discovery, Unix uses LD_LIBRARY_PATH.
		switch runtime.GOOS {
		case "windows":
			if v := os.Getenv("PATH"); !strings.Contains(v, libPath) {
				os.Setenv("PATH", fmt.Sprintf("%s;%s", libPath, v))
			}
		default:
			if v := os.Getenv("LD_LIBRARY_PATH"); !strings.Contains(v, libPath) {
				os.Setenv("LD_LIBRARY_PATH", fmt.Sprintf("%s:%s", libPath, v))
			}
		}

		if err := llama.Load(libPath); err != nil {
			initErr = fmt.Errorf("init: unable to load library: %w", err)
			return
		}

		libraryLocation = libPath
		llama.Init()

		switch o.logLevel {
		case LogNormal:
			llama.LogSet(llama.LogNormal)
		default:
			llama.LogSet(llama.LogSilent())
		}
	})

	return initErr
}

// LibraryLocation returns the location of the loaded llama.cpp libraries.
// It is empty until Init succeeds.
func LibraryLocation() string {
	return libraryLocation
}
