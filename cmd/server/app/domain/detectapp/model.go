package detectapp

import "net/http"

// page is the rendered html for one request, with the session cookie to set
// when the visitor is new.
type page struct {
	html   []byte
	cookie *http.Cookie
}

// Encode implements the encoder interface.
func (p page) Encode() ([]byte, string, error) {
	return p.html, "text/html; charset=utf-8", nil
}

// Header implements the web header interface.
func (p page) Header(h http.Header) {
	h.Set("Cache-Control", "no-store")

	if p.cookie != nil {
		h.Add("Set-Cookie", p.cookie.String())
	}
}
