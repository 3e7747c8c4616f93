// Package downloader fetches model and library files over http with
// progress reporting.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-getter"
)

// Size intervals for progress reporting.
const (
	SizeIntervalMIB    = 1024 * 1024
	SizeIntervalMIB10  = SizeIntervalMIB * 10
	SizeIntervalMIB100 = SizeIntervalMIB * 100
)

// ProgressFunc provides feedback on the progress of a file download.
type ProgressFunc func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool)

// Options represent optional settings for a download.
type Options struct {
	token        string
	progress     ProgressFunc
	sizeInterval int64
}

// WithToken sets a bearer token sent to huggingface hosts only.
func WithToken(token string) func(*Options) {
	return func(o *Options) {
		o.token = token
	}
}

// WithProgress sets a function that receives progress updates every
// sizeInterval bytes.
func WithProgress(progress ProgressFunc, sizeInterval int64) func(*Options) {
	return func(o *Options) {
		o.progress = progress
		o.sizeInterval = sizeInterval
	}
}

// Download pulls down a single file from a url into the specified destination
// folder. It reports false when nothing was transferred.
func Download(ctx context.Context, src string, dest string, options ...func(*Options)) (bool, error) {
	var opts Options
	for _, option := range options {
		option(&opts)
	}

	tracker := NewProgressReader(opts.progress, opts.sizeInterval)

	client := getter.Client{
		Ctx:              ctx,
		Src:              src,
		Dst:              dest,
		Mode:             getter.ClientModeAny,
		ProgressListener: tracker,
		Getters:          getters(src, opts.token),
	}

	if err := client.Get(); err != nil {
		return false, fmt.Errorf("download: %s: %w", src, err)
	}

	return tracker.Transferred() > 0, nil
}

func getters(src string, token string) map[string]getter.Getter {
	if token == "" || !isHuggingFace(src) {
		return nil
	}

	hg := getter.HttpGetter{
		Header: map[string][]string{
			"Authorization": {"Bearer " + token},
		},
	}

	return map[string]getter.Getter{
		"https": &hg,
		"http":  &hg,
	}
}

func isHuggingFace(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())

	return host == "huggingface.co" || strings.HasSuffix(host, ".huggingface.co") || strings.HasSuffix(host, ".hf.co")
}

// =============================================================================

// ProgressReader tracks the bytes moved by every stream it is handed.
type ProgressReader struct {
	progress     ProgressFunc
	sizeInterval int64
	transferred  atomic.Int64
}

// NewProgressReader constructs a progress tracker. A nil progress function
// only counts bytes.
func NewProgressReader(progress ProgressFunc, sizeInterval int64) *ProgressReader {
	return &ProgressReader{
		progress:     progress,
		sizeInterval: sizeInterval,
	}
}

// TrackProgress wraps the stream for a single file.
func (pr *ProgressReader) TrackProgress(src string, currentSize int64, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	return &trackedStream{
		owner:    pr,
		src:      src,
		size:     currentSize,
		total:    totalSize,
		reported: currentSize,
		start:    time.Now(),
		stream:   stream,
	}
}

// Transferred returns the number of bytes read across all streams.
func (pr *ProgressReader) Transferred() int64 {
	return pr.transferred.Load()
}

type trackedStream struct {
	owner    *ProgressReader
	src      string
	size     int64
	total    int64
	reported int64
	start    time.Time
	stream   io.ReadCloser
}

func (ts *trackedStream) Read(p []byte) (int, error) {
	n, err := ts.stream.Read(p)

	ts.size += int64(n)
	ts.owner.transferred.Add(int64(n))

	if ts.size-ts.reported >= ts.owner.sizeInterval {
		ts.reported = ts.size
		ts.report(false)
	}

	return n, err
}

func (ts *trackedStream) Close() error {
	ts.report(true)
	return ts.stream.Close()
}

func (ts *trackedStream) report(complete bool) {
	if ts.owner.progress == nil {
		return
	}

	var rate float64
	if secs := time.Since(ts.start).Seconds(); secs > 0 {
		rate = float64(ts.size) / SizeIntervalMIB / secs
	}

	ts.owner.progress(ts.src, ts.size, ts.total, rate, complete)
}
