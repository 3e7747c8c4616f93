package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
)

func Test_Logger(t *testing.T) {
	var buf bytes.Buffer

	traceIDFn := func(ctx context.Context) string {
		return "trace-1"
	}

	log := logger.New(&buf, logger.LevelInfo, "AIDETECT", traceIDFn)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "detect", "verdict", "AI")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single json line, got: %v: %s", err, buf.String())
	}

	exp := map[string]string{
		"msg":      "detect",
		"service":  "AIDETECT",
		"verdict":  "AI",
		"trace_id": "trace-1",
		"level":    "INFO",
	}

	for k, v := range exp {
		if entry[k] != v {
			t.Fatalf("expected %s to be %q, got %v", k, v, entry[k])
		}
	}

	if _, exists := entry["file"]; !exists {
		t.Fatal("expected the file attribute to be logged")
	}
}

func Test_LoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	var alerts int

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			alerts++
		},
	}

	log := logger.NewWithEvents(&buf, logger.LevelInfo, "AIDETECT", nil, events)

	log.Info(context.Background(), "fine")
	log.Error(context.Background(), "broken", "ERROR", "model missing")

	if alerts != 1 {
		t.Fatalf("expected 1 alert, got %d", alerts)
	}
}
