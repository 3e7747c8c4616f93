package errs_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/errs"
)

func Test_Error(t *testing.T) {
	err := errs.Errorf(errs.InvalidArgument, "bad form: %s", "text")

	if err.HTTPStatus() != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus())
	}

	if err.FileName == "" || err.FuncName == "" {
		t.Fatal("expected the caller to be recorded")
	}

	data, contentType, encErr := err.Encode()
	if encErr != nil {
		t.Fatalf("expected no error, got: %v", encErr)
	}

	if contentType != "application/json" {
		t.Fatalf("expected application/json, got %s", contentType)
	}

	var got errs.Error
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !got.Equal(err) {
		t.Fatalf("expected %+v, got %+v", err, got)
	}

	wrapped := fmt.Errorf("handler: %w", err)

	if !errs.IsError(wrapped) {
		t.Fatal("expected IsError to see through wrapping")
	}

	if errs.GetError(errors.New("plain")) != nil {
		t.Fatal("expected nil for a plain error")
	}
}
