// Package assistant relays chat and voice turns to the external AI backend.
package assistant

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/api/presenter"
	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
)

const Prefix = "/assistant/"

// routes maps relayed paths to the method the backend accepts.
var routes = map[string]string{
	"analyze":        http.MethodPost,
	"transcribe":     http.MethodPost,
	"text-to-speech": http.MethodPost,
	"health":         http.MethodGet,
}

// Relay forwards allowlisted assistant calls. Responses are streamed without
// buffering so server-sent events reach the browser as they are produced.
type Relay struct {
	target  *url.URL
	maxBody int64
	proxy   *httputil.ReverseProxy
}

var _ http.Handler = (*Relay)(nil)

func New(cfg config.AssistantConfig, transport http.RoundTripper) (*Relay, error) {
	if cfg.BackendURL == "" {
		return nil, errors.New("assistant backend url is empty")
	}
	target, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("parsing assistant backend url: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("assistant backend url must be http(s), got %q", cfg.BackendURL)
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultAssistantMaxBody
	}

	rl := &Relay{target: target, maxBody: maxBody}
	rl.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = "/" + strings.TrimPrefix(pr.In.URL.Path, Prefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
			if id := correlation.FromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(correlation.Header, id)
			}
		},
		Transport:     transport,
		FlushInterval: -1,
		ErrorHandler:  rl.handleError,
	}
	return rl, nil
}

func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, Prefix)
	method, ok := routes[name]
	if !ok {
		presenter.Error(w, r, "unknown assistant route", http.StatusNotFound)
		return
	}
	if r.Method != method {
		w.Header().Set("Allow", method)
		presenter.Error(w, r, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.ContentLength > rl.maxBody {
		presenter.Error(w, r, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, rl.maxBody)
	}

	log.Ctx(r.Context()).Debug().
		Str("route", name).
		Str("backend", rl.target.Host).
		Msg("relaying assistant request")

	rl.proxy.ServeHTTP(w, r)
}

func (rl *Relay) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		presenter.Error(w, r, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	log.Ctx(r.Context()).Warn().Err(err).Str("backend", rl.target.Host).Msg("assistant backend unreachable")
	presenter.Error(w, r, "assistant backend unavailable", http.StatusBadGateway)
}
