package detectapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/sdk/detector"
	"github.com/ardanlabs/aidetect/sdk/detector/verdict"
	"github.com/ardanlabs/aidetect/sdk/observ/metrics"
	"github.com/ardanlabs/aidetect/sdk/security/rate"
	"github.com/google/uuid"
)

// Set of messages shown on the page.
const (
	msgLoadFailed = "Model loading failed, please check the network or memory status."
	msgTooShort   = "Text is too short, please enter at least one complete sentence."
	msgBusy       = "An analysis is already running for this session, please wait for it to finish."
	msgThrottled  = "Too many analyses in a short time, please wait a moment and try again."
	msgDetectErr  = "An error occurred during detection: %v"
)

// Request represents one interaction with the page. Triggered is set when
// the analyze button was pressed.
type Request struct {
	Triggered bool
	Text      string
}

// View represents everything needed to render the page once.
type View struct {
	ModelID string
	Loading bool
	Halted  bool
	Error   string
	Warning string
	Text    string
	Report  *verdict.Report
}

// Shell decides what the page shows for a session. It is the only stateful
// piece of the page.
type Shell struct {
	log       *logger.Logger
	provider  *detector.Provider
	detector  *detector.Detector
	sessions  *session.Store
	limiter   *rate.Limiter
	rateLimit rate.Limit
	loadWait  time.Duration
}

// NewShell constructs the shell. LoadWait is how long a page render waits
// for the model before showing the loading notice. A nil Limiter disables
// rate limiting.
func NewShell(cfg Config) *Shell {
	return &Shell{
		log:       cfg.Log,
		provider:  cfg.Provider,
		detector:  cfg.Detector,
		sessions:  cfg.Sessions,
		limiter:   cfg.Limiter,
		rateLimit: cfg.RateLimit,
		loadWait:  cfg.LoadWait,
	}
}

// Page renders the page without an interaction. It starts the model load
// and halts the session if the load fails.
func (s *Shell) Page(ctx context.Context, sessionID uuid.UUID) View {
	data, _ := s.sessions.Get(sessionID)
	if data.State.Equal(session.Halted) {
		return s.halted(data)
	}

	loading, err := s.waitForModel(ctx)
	if err != nil {
		return s.halt(ctx, sessionID, err)
	}

	return View{
		ModelID: s.provider.ModelID(),
		Loading: loading,
	}
}

// Handle processes one interaction for the session.
func (s *Shell) Handle(ctx context.Context, sessionID uuid.UUID, req Request) View {
	data, _ := s.sessions.Get(sessionID)

	if data.State.Equal(session.Halted) {
		return s.halted(data)
	}

	view := View{
		ModelID: s.provider.ModelID(),
		Text:    req.Text,
	}

	if !req.Triggered || req.Text == "" {
		return view
	}

	if err := detector.ValidateText(req.Text); err != nil {
		metrics.AddRejections()
		view.Warning = msgTooShort
		return view
	}

	if _, ok := s.sessions.Begin(sessionID); !ok {
		view.Warning = msgBusy
		return view
	}
	defer s.sessions.End(sessionID)

	if !s.allow(ctx, sessionID) {
		view.Warning = msgThrottled
		return view
	}

	probs, err := s.detector.Infer(ctx, req.Text)
	if err != nil {
		var le *detector.LoadError
		if errors.As(err, &le) {
			return s.halt(ctx, sessionID, err)
		}

		s.log.Error(ctx, "detect", "status", "inference failed", "ERROR", err)

		view.Error = fmt.Sprintf(msgDetectErr, err)
		return view
	}

	report := verdict.NewReport(probs)
	metrics.AddVerdict(string(report.Verdict.Label))

	s.log.Info(ctx, "detect", "verdict", report.Verdict.Label, "ai", verdict.FormatPercent(probs.AI), "human", verdict.FormatPercent(probs.Human), "chars", len(strings.TrimSpace(req.Text)))

	view.Report = &report

	return view
}

// allow fails open when the limiter itself errors.
func (s *Shell) allow(ctx context.Context, sessionID uuid.UUID) bool {
	if s.limiter == nil {
		return true
	}

	err := s.limiter.Check(ctx, sessionID.String(), "detect", s.rateLimit)
	switch {
	case err == nil:
		return true

	case errors.Is(err, rate.ErrRateLimitExceeded):
		return false
	}

	s.log.Error(ctx, "detect", "status", "rate limiter failed", "ERROR", err)

	return true
}

func (s *Shell) waitForModel(ctx context.Context) (bool, error) {
	if s.provider.Loaded() {
		return false, nil
	}

	done := make(chan error, 1)

	// The load outlives the request that started it.
	go func() {
		_, err := s.provider.Load(ctx)
		done <- err
	}()

	timer := time.NewTimer(s.loadWait)
	defer timer.Stop()

	select {
	case err := <-done:
		return false, err

	case <-timer.C:
		return true, nil

	case <-ctx.Done():
		return true, nil
	}
}

func (s *Shell) halt(ctx context.Context, sessionID uuid.UUID, err error) View {
	s.log.Error(ctx, "detect", "status", "model load failed, session halted", "session", sessionID, "ERROR", err)

	data := s.sessions.Halt(sessionID, err.Error())

	return s.halted(data)
}

func (s *Shell) halted(data session.Data) View {
	return View{
		ModelID: s.provider.ModelID(),
		Halted:  true,
		Error:   fmt.Sprintf("%s\nError: %s", msgLoadFailed, data.HaltReason),
	}
}
