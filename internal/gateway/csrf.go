package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrTokenUnavailable is returned when no anti-forgery token can be obtained.
// Callers must treat it as a reason to abort the mutating call; a mutation is
// never sent without a token.
var ErrTokenUnavailable = errors.New("anti-forgery token unavailable")

// Token is an anti-forgery token plus the backend cookie issued alongside a
// fresh fetch. Cookie is nil when the token came from the request's own jar.
type Token struct {
	Value  string
	Cookie *http.Cookie
}

// csrfData is the success payload of the anti-forgery endpoint.
type csrfData struct {
	Token string `json:"csrf_token"`
}

// TokenBroker guarantees that state-changing backend calls carry a valid
// anti-forgery token, fetching one only when the request does not already
// cache it. Concurrent fetches for the same browser session are tolerated;
// the endpoint is idempotent and cheap, so no coalescing is done.
type TokenBroker struct {
	client   Doer
	tokenURL string
	logger   *slog.Logger
}

// TokenBrokerOptions groups dependencies for NewTokenBroker.
type TokenBrokerOptions struct {
	Client Doer
	// TokenURL is the absolute URL of the backend anti-forgery endpoint.
	TokenURL string
	Logger   *slog.Logger
}

// NewTokenBroker builds a broker. Client and TokenURL are required.
func NewTokenBroker(opts TokenBrokerOptions) *TokenBroker {
	if opts.Client == nil {
		panic("gateway: TokenBroker requires a Client")
	}
	if opts.TokenURL == "" {
		panic("gateway: TokenBroker requires a TokenURL")
	}
	return &TokenBroker{
		client:   opts.Client,
		tokenURL: opts.TokenURL,
		logger:   opts.Logger,
	}
}

func (b *TokenBroker) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}

// Token returns the anti-forgery token for the bound request. The cached
// cookie is the fast path and issues no network call. Otherwise the broker
// fetches a fresh token; the returned Cookie must be propagated onward so
// the next call hits the fast path. All failure modes collapse into
// ErrTokenUnavailable rather than leaking transport detail.
func (b *TokenBroker) Token(ctx context.Context, store *CredentialStore) (Token, error) {
	if v, ok := store.Read(CSRFTokenCookie); ok {
		return Token{Value: v}, nil
	}
	return b.fetch(ctx)
}

// fetch obtains a fresh token from the unauthenticated backend endpoint.
func (b *TokenBroker) fetch(ctx context.Context) (Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.tokenURL, nil)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.log().WarnContext(ctx, "anti-forgery token fetch failed", "error", err)
		return Token{}, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	defer resp.Body.Close()

	res := Interpret(resp)
	if res.Kind != KindSuccess {
		b.log().WarnContext(ctx, "anti-forgery endpoint returned non-success",
			"kind", res.Kind.String(), "status", res.StatusCode)
		return Token{}, ErrTokenUnavailable
	}

	var data csrfData
	if err := res.Decode(&data); err != nil || data.Token == "" {
		b.log().WarnContext(ctx, "anti-forgery payload malformed", "error", err)
		return Token{}, ErrTokenUnavailable
	}

	tok := Token{Value: data.Token}
	for _, c := range res.cookies {
		if c.Name == CSRFTokenCookie {
			tok.Cookie = c
			break
		}
	}
	return tok, nil
}
