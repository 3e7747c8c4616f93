package defaults_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/aidetect/sdk/tools/defaults"
	"github.com/hybridgroup/yzma/pkg/download"
)

func Test_BaseDir(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		t.Setenv("AIDETECT_BASE_PATH", "/from/env")

		if got := defaults.BaseDir("/override"); got != "/override" {
			t.Fatalf("expected %q, got %q", "/override", got)
		}
	})

	t.Run("env var", func(t *testing.T) {
		t.Setenv("AIDETECT_BASE_PATH", "/from/env")

		if got := defaults.BaseDir(""); got != "/from/env" {
			t.Fatalf("expected %q, got %q", "/from/env", got)
		}
	})

	t.Run("home dir", func(t *testing.T) {
		t.Setenv("AIDETECT_BASE_PATH", "")

		got := defaults.BaseDir("")
		if filepath.Base(got) != ".aidetect" {
			t.Fatalf("expected base folder .aidetect, got %q", got)
		}
	})
}

func Test_Processor(t *testing.T) {
	t.Setenv("AIDETECT_PROCESSOR", "")

	p, err := defaults.Processor("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if p != download.CPU {
		t.Fatalf("expected cpu, got %v", p)
	}
}

func Test_HFToken(t *testing.T) {
	t.Setenv("AIDETECT_HF_TOKEN", "hf_env")

	if got := defaults.HFToken(""); got != "hf_env" {
		t.Fatalf("expected %q, got %q", "hf_env", got)
	}

	if got := defaults.HFToken("hf_flag"); got != "hf_flag" {
		t.Fatalf("expected %q, got %q", "hf_flag", got)
	}
}
