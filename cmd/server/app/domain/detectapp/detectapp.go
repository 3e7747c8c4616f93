// Package detectapp maintains the app layer for the detector page.
package detectapp

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/aidetect/cmd/server/app/sdk/session"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/logger"
	"github.com/ardanlabs/aidetect/cmd/server/foundation/web"
	"github.com/google/uuid"
)

const maxFormSize = 1 << 20

type app struct {
	log        *logger.Logger
	shell      *Shell
	renderer   *Renderer
	sessionTTL time.Duration
}

func newApp(cfg Config) (*app, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	a := app{
		log:        cfg.Log,
		shell:      NewShell(cfg),
		renderer:   renderer,
		sessionTTL: cfg.SessionTTL,
	}

	return &a, nil
}

func (a *app) page(ctx context.Context, r *http.Request) web.Encoder {
	sessionID, isNew := a.sessionID(r)

	view := a.shell.Page(ctx, sessionID)

	return a.render(view, sessionID, isNew)
}

func (a *app) detect(ctx context.Context, r *http.Request) web.Encoder {
	r.Body = http.MaxBytesReader(web.GetWriter(ctx), r.Body, maxFormSize)

	if err := r.ParseForm(); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	req := Request{
		Triggered: r.PostForm.Get("action") == "analyze",
		Text:      r.PostForm.Get("text"),
	}

	sessionID, isNew := a.sessionID(r)

	view := a.shell.Handle(ctx, sessionID, req)

	return a.render(view, sessionID, isNew)
}

func (a *app) render(view View, sessionID uuid.UUID, isNew bool) web.Encoder {
	html, err := a.renderer.Render(view)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	p := page{
		html: html,
	}

	if isNew {
		p.cookie = &http.Cookie{
			Name:     session.CookieName,
			Value:    sessionID.String(),
			Path:     "/",
			MaxAge:   int(a.sessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
	}

	return p
}

func (a *app) sessionID(r *http.Request) (uuid.UUID, bool) {
	id, ok := session.FromRequest(r)
	if !ok {
		return uuid.New(), true
	}

	return id, false
}
