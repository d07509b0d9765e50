// Package gateway is the session-bridging layer between the rendering tier
// and the content backend. It owns the three concerns every authenticated
// exchange needs: the request-scoped credential store (cookie jar in,
// cookies out), the anti-forgery token broker, and the envelope interpreter
// that classifies each backend response into exactly one of success, fail,
// or error. Handlers and services route every backend call through here
// instead of carrying their own cookie and token plumbing.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CSRFHeader is the request header the backend expects the anti-forgery
// token to be echoed in.
const CSRFHeader = "X-CSRFToken"

// Doer issues HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the gateway's backend wiring.
type Config struct {
	// BaseURL is the backend API origin, e.g. "http://localhost:8000".
	BaseURL string
	// CSRFPath is the anti-forgery endpoint path (default "/auth/csrf/").
	CSRFPath string
	// Timeout bounds each outbound exchange; zero means 10s.
	Timeout time.Duration
	// Policy fixes session-cookie attributes.
	Policy CookiePolicy
	// DevMode makes cookie-write misuse fail loudly instead of being
	// logged and swallowed.
	DevMode bool
}

func (c *Config) sanitize() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.CSRFPath == "" {
		c.CSRFPath = "/auth/csrf/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Policy.AccessTokenTTL == 0 && c.Policy.RefreshTokenTTL == 0 {
		c.Policy = CookiePolicy{
			AccessTokenTTL:  DefaultCookiePolicy().AccessTokenTTL,
			RefreshTokenTTL: DefaultCookiePolicy().RefreshTokenTTL,
			Domain:          c.Policy.Domain,
		}
	}
}

// Gateway performs authenticated backend calls on behalf of browser
// sessions. It holds no per-session state; Bind produces the request-scoped
// Session that does the work.
type Gateway struct {
	client Doer
	cfg    Config
	broker *TokenBroker
	logger *slog.Logger
}

// Options groups dependencies for New.
type Options struct {
	// Client is the HTTP transport; defaults to a plain http.Client.
	Client Doer
	Config Config
	Logger *slog.Logger
}

// New builds a Gateway. Config.BaseURL is required.
func New(opts Options) *Gateway {
	cfg := opts.Config
	cfg.sanitize()
	if cfg.BaseURL == "" {
		panic("gateway: Config.BaseURL is required")
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Gateway{
		client: client,
		cfg:    cfg,
		broker: NewTokenBroker(TokenBrokerOptions{
			Client:   client,
			TokenURL: cfg.BaseURL + cfg.CSRFPath,
			Logger:   opts.Logger,
		}),
		logger: opts.Logger,
	}
}

func (g *Gateway) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}

// Bind scopes the gateway to one inbound request/response pair. Each bound
// session reads the cookie jar fresh and shares nothing with concurrent
// invocations.
func (g *Gateway) Bind(w http.ResponseWriter, r *http.Request) *Session {
	return &Session{
		g: g,
		store: NewCredentialStore(CredentialStoreOptions{
			Request:  r,
			Response: w,
			Config: CredentialStoreConfig{
				Policy:  g.cfg.Policy,
				DevMode: g.cfg.DevMode,
				Logger:  g.logger,
			},
		}),
	}
}

// Call describes one backend exchange.
type Call struct {
	Method string
	// Path is joined to the configured base URL.
	Path  string
	Query url.Values
	// Body is JSON-encoded when non-nil.
	Body any
}

// Session is a Gateway bound to one browser request. Credential forwarding,
// token brokering, envelope interpretation, cookie re-emission, and session
// invalidation all happen inside Do.
type Session struct {
	g     *Gateway
	store *CredentialStore
}

// Store exposes the request-scoped credential store for callers that manage
// cookies directly (e.g. logout).
func (s *Session) Store() *CredentialStore {
	return s.store
}

// EnsureCSRF guarantees the browser holds an anti-forgery cookie, fetching
// one from the backend when absent, and returns the token value for form
// embedding. Used by page renders that will submit mutations.
func (s *Session) EnsureCSRF(ctx context.Context) (string, error) {
	tok, err := s.g.broker.Token(ctx, s.store)
	if err != nil {
		return "", err
	}
	if tok.Cookie != nil {
		s.store.WriteCSRF(tok.Cookie.Value)
	}
	return tok.Value, nil
}

// Do performs one backend exchange and classifies the outcome. For mutating
// methods it brokers the anti-forgery token first and aborts without
// contacting the backend when none is available. Session cookies from the
// backend are re-emitted only after a success classification; an
// unauthorized result deletes both session cookies before returning.
func (s *Session) Do(ctx context.Context, call Call) *Result {
	ctx, cancel := context.WithTimeout(ctx, s.g.cfg.Timeout)
	defer cancel()

	var token Token
	if mutating(call.Method) {
		var err error
		token, err = s.g.broker.Token(ctx, s.store)
		if err != nil {
			// Never send a mutation without the token.
			return &Result{
				Kind:      KindError,
				Message:   "the request could not be protected against cross-site forgery",
				Transport: true,
			}
		}
	}

	req, err := s.buildRequest(ctx, call, token)
	if err != nil {
		s.g.log().ErrorContext(ctx, "gateway request build failed",
			"method", call.Method, "path", call.Path, "error", err)
		return transportResult(0, msgBackendUnreachable)
	}

	resp, err := s.g.client.Do(req)
	if err != nil {
		res := transportResult(0, msgBackendUnreachable)
		if errors.Is(err, context.DeadlineExceeded) {
			res.Message = "the content service took too long to respond"
			res.Timeout = true
		}
		s.g.log().WarnContext(ctx, "gateway call failed",
			"method", call.Method, "path", call.Path, "error", err)
		return res
	}
	defer resp.Body.Close()

	res := Interpret(resp)

	switch {
	case res.Kind == KindSuccess:
		s.persistCookies(res)
		if token.Cookie != nil {
			// Freshly brokered token: cache it so the next mutation takes
			// the fast path.
			s.store.WriteCSRF(token.Cookie.Value)
		}
	case res.Unauthorized():
		s.store.DeleteSession()
		res.SessionInvalid = true
	}

	return res
}

// buildRequest assembles the outbound request with forwarded credentials
// and, for mutations, the anti-forgery token in both header and cookie.
func (s *Session) buildRequest(ctx context.Context, call Call, token Token) (*http.Request, error) {
	u := s.g.cfg.BaseURL + call.Path
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}

	var body *bytes.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cookieHeader := s.store.CookieHeader(token.Cookie); cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	if mutating(call.Method) && token.Value != "" {
		req.Header.Set(CSRFHeader, token.Value)
	}
	return req, nil
}

// persistCookies re-emits backend-issued session and anti-forgery cookies to
// the browser with the contract attributes. Called only on success.
func (s *Session) persistCookies(res *Result) {
	for _, c := range res.cookies {
		switch c.Name {
		case AccessTokenCookie, RefreshTokenCookie:
			s.store.WriteSession(c.Name, c.Value)
		case CSRFTokenCookie:
			s.store.WriteCSRF(c.Value)
		}
	}
}

func mutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// ValidationError carries a fail envelope's field-error map across the
// service boundary with its wire shapes intact.
type ValidationError struct {
	Fields FieldErrors
}

// Error implements the error interface with a display-oriented summary.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+msgs.First())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
