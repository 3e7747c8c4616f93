package models_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/aidetect/sdk/tools/models"
	"github.com/google/go-cmp/cmp"
)

func noLog(ctx context.Context, msg string, args ...any) {}

func writeModel(t *testing.T, mdls *models.Models, org string, repo string, file string) string {
	t.Helper()

	dir := filepath.Join(mdls.Path(), org, repo)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	fileName := filepath.Join(dir, file)
	if err := os.WriteFile(fileName, []byte("GGUF"), 0644); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	return fileName
}

func Test_Index(t *testing.T) {
	mdls, err := models.NewWithPaths(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	fileName := writeModel(t, mdls, "openai-community", "roberta-base-openai-detector", "Roberta-Detector-F16.gguf")
	writeModel(t, mdls, "openai-community", "roberta-base-openai-detector", "README.md")

	if err := os.MkdirAll(filepath.Join(mdls.Path(), "empty", "repo"), 0755); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if err := mdls.BuildIndex(); err != nil {
		t.Fatalf("expected no error building index, got: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		exp := []string{"roberta-detector-f16"}
		if diff := cmp.Diff(exp, mdls.List()); diff != "" {
			t.Fatalf("unexpected model list (-exp +got):\n%s", diff)
		}
	})

	t.Run("retrieve", func(t *testing.T) {
		mp, err := mdls.RetrievePath("Roberta-Detector-F16")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		exp := models.Path{
			ModelFile:  fileName,
			Repo:       "openai-community/roberta-base-openai-detector",
			Downloaded: true,
		}

		if diff := cmp.Diff(exp, mp); diff != "" {
			t.Fatalf("unexpected path (-exp +got):\n%s", diff)
		}
	})

	t.Run("empty folders removed", func(t *testing.T) {
		if _, err := os.Stat(filepath.Join(mdls.Path(), "empty")); !os.IsNotExist(err) {
			t.Fatal("expected empty folders to be removed")
		}
	})

	t.Run("remove", func(t *testing.T) {
		mp, err := mdls.RetrievePath("roberta-detector-f16")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if err := mdls.Remove(mp); err != nil {
			t.Fatalf("expected no error removing, got: %v", err)
		}

		if _, err := mdls.RetrievePath("roberta-detector-f16"); err == nil {
			t.Fatal("expected model to be gone from the index")
		}
	})
}

func Test_DownloadExisting(t *testing.T) {
	mdls, err := models.NewWithPaths(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	fileName := writeModel(t, mdls, "org", "repo", "detector.gguf")

	mp, err := mdls.Download(context.Background(), noLog, "https://huggingface.co/org/repo/resolve/main/detector.gguf", "")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	exp := models.Path{
		ModelFile:  fileName,
		Repo:       "org/repo",
		Downloaded: false,
	}

	if diff := cmp.Diff(exp, mp); diff != "" {
		t.Fatalf("unexpected path (-exp +got):\n%s", diff)
	}
}

func Test_DownloadInvalidURL(t *testing.T) {
	mdls, err := models.NewWithPaths(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := mdls.Download(context.Background(), noLog, "https://huggingface.co/model.bin", ""); err == nil {
		t.Fatal("expected an error for a url that is not a gguf file")
	}
}
