package downloader_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/ardanlabs/aidetect/sdk/tools/downloader"
)

func Test_ProgressReader(t *testing.T) {
	var calls int
	var final bool
	var lastSize int64

	progress := func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool) {
		calls++
		lastSize = currentSize
		final = complete
	}

	data := bytes.Repeat([]byte("a"), 64)

	pr := downloader.NewProgressReader(progress, 16)
	rc := pr.TrackProgress("src", 0, int64(len(data)), io.NopCloser(bytes.NewReader(data)))

	buf := make([]byte, 16)
	for {
		_, err := rc.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	}

	if err := rc.Close(); err != nil {
		t.Fatalf("expected no error closing, got: %v", err)
	}

	if calls != 5 {
		t.Fatalf("expected 5 progress calls, got %d", calls)
	}

	if lastSize != int64(len(data)) {
		t.Fatalf("expected final size %d, got %d", len(data), lastSize)
	}

	if !final {
		t.Fatal("expected the last progress call to be marked complete")
	}
}

func Test_Transferred(t *testing.T) {
	pr := downloader.NewProgressReader(nil, downloader.SizeIntervalMIB)

	for _, src := range []string{"a", "b"} {
		rc := pr.TrackProgress(src, 0, 10, io.NopCloser(bytes.NewReader(make([]byte, 10))))

		if _, err := io.Copy(io.Discard, rc); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		rc.Close()
	}

	if n := pr.Transferred(); n != 20 {
		t.Fatalf("expected 20 bytes transferred, got %d", n)
	}
}
