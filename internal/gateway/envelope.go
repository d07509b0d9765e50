package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Envelope discriminator values used by the backend on every JSON response.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// CodeUnauthorized is the backend error code that signals an invalid or
// expired session. Results carrying it require session-cookie cleanup on
// top of ordinary error display.
const CodeUnauthorized = "UNAUTHORIZED"

// Kind classifies an interpreted backend response.
type Kind int

const (
	// KindSuccess carries a payload in Result.Data.
	KindSuccess Kind = iota
	// KindFail carries caller-correctable field errors in Result.FieldErrors.
	KindFail
	// KindError carries a server or transport fault in Result.Message.
	KindError
)

// String returns the discriminator spelling for the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return StatusSuccess
	case KindFail:
		return StatusFail
	default:
		return StatusError
	}
}

// FieldMessages holds the validation messages for one field. The backend is
// inconsistent about the wire shape (a bare string or an array of strings),
// so the original shape is preserved for programmatic consumers and only
// reduced at the point of display.
type FieldMessages struct {
	messages []string
	single   bool
}

// NewFieldMessages builds an array-shaped FieldMessages, mainly for tests.
func NewFieldMessages(messages ...string) FieldMessages {
	return FieldMessages{messages: messages}
}

// SingleFieldMessage builds a string-shaped FieldMessages.
func SingleFieldMessage(message string) FieldMessages {
	return FieldMessages{messages: []string{message}, single: true}
}

// UnmarshalJSON accepts either a JSON string or a JSON array of strings.
func (m *FieldMessages) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		m.messages = []string{s}
		m.single = true
		return nil
	}

	var arr []string
	if err := json.Unmarshal(trimmed, &arr); err != nil {
		return err
	}
	m.messages = arr
	m.single = false
	return nil
}

// MarshalJSON round-trips the original wire shape.
func (m FieldMessages) MarshalJSON() ([]byte, error) {
	if m.single && len(m.messages) == 1 {
		return json.Marshal(m.messages[0])
	}
	return json.Marshal(m.messages)
}

// Messages returns all messages for the field.
func (m FieldMessages) Messages() []string {
	return m.messages
}

// IsSingle reports whether the backend sent a bare string for this field.
func (m FieldMessages) IsSingle() bool {
	return m.single
}

// First returns the first message, or the string itself for string-shaped
// values. This is the display-time reduction; structured consumers should
// use Messages.
func (m FieldMessages) First() string {
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[0]
}

// FieldErrors maps field names to their validation messages.
type FieldErrors map[string]FieldMessages

// FirstMessages reduces the map to one message per field for display.
func (fe FieldErrors) FirstMessages() map[string]string {
	if len(fe) == 0 {
		return nil
	}
	out := make(map[string]string, len(fe))
	for field, msgs := range fe {
		out[field] = msgs.First()
	}
	return out
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// Result is the classified outcome of one backend exchange. Exactly one of
// the three kinds applies; the zero value is not meaningful.
type Result struct {
	Kind       Kind
	StatusCode int

	// Data holds the verbatim success payload (KindSuccess).
	Data json.RawMessage

	// FieldErrors holds the verbatim per-field validation map (KindFail).
	FieldErrors FieldErrors

	// Message and Code describe a server or transport fault (KindError).
	Message string
	Code    string

	// Transport marks KindError results caused by network failures,
	// timeouts, or non-conforming response bodies rather than an explicit
	// backend error envelope.
	Transport bool

	// Timeout narrows Transport: the backend did not answer within the
	// configured deadline.
	Timeout bool

	// SessionInvalid instructs the caller that the session credentials were
	// rejected; the gateway has already deleted the session cookies and the
	// user must be sent back through sign-in.
	SessionInvalid bool

	// cookies are the backend-issued Set-Cookie values captured from the
	// response, re-emitted to the browser only on success.
	cookies []*http.Cookie
}

// Unauthorized reports whether the result carries the session-invalidation
// signal: the backend's unauthorized code or a bare HTTP 401.
func (r *Result) Unauthorized() bool {
	if r.Kind != KindError {
		return false
	}
	return r.Code == CodeUnauthorized || r.StatusCode == http.StatusUnauthorized
}

// Decode unmarshals the success payload into dst. Calling it on a non-success
// result is a programmer error and returns an error rather than panicking.
func (r *Result) Decode(dst any) error {
	if r.Kind != KindSuccess {
		return fmt.Errorf("decode on %s result", r.Kind)
	}
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, dst); err != nil {
		return fmt.Errorf("decode success payload: %w", err)
	}
	return nil
}

// Generic messages for transport-level faults. Raw parser or network detail
// never crosses the gateway boundary.
const (
	msgBackendUnreachable = "the content service could not be reached"
	msgUnexpectedShape    = "the content service returned an unexpected response"
)

// Interpret classifies a raw backend HTTP response into exactly one Result.
// The decision order is fixed: transport fault, then the 204 short-circuit,
// then envelope discriminator dispatch. It never returns nil and never
// panics on malformed input.
func Interpret(resp *http.Response) *Result {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportResult(resp.StatusCode, msgBackendUnreachable)
	}
	return interpretBody(resp, body)
}

func interpretBody(resp *http.Response, body []byte) *Result {
	// 204 means success with no payload; some backends still attach a stray
	// body here, which is ignored rather than parsed.
	if resp.StatusCode == http.StatusNoContent {
		return &Result{
			Kind:       KindSuccess,
			StatusCode: resp.StatusCode,
			cookies:    parseBackendCookies(resp),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return transportResult(resp.StatusCode, msgUnexpectedShape)
	}

	switch env.Status {
	case StatusSuccess:
		return &Result{
			Kind:       KindSuccess,
			StatusCode: resp.StatusCode,
			Data:       env.Data,
			cookies:    parseBackendCookies(resp),
		}
	case StatusFail:
		var fields FieldErrors
		if err := json.Unmarshal(env.Data, &fields); err != nil {
			return transportResult(resp.StatusCode, msgUnexpectedShape)
		}
		return &Result{
			Kind:        KindFail,
			StatusCode:  resp.StatusCode,
			FieldErrors: fields,
		}
	case StatusError:
		return &Result{
			Kind:       KindError,
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Code:       env.Code,
		}
	default:
		// Absent or unrecognized discriminator: do not guess.
		return transportResult(resp.StatusCode, msgUnexpectedShape)
	}
}

func transportResult(statusCode int, message string) *Result {
	return &Result{
		Kind:       KindError,
		StatusCode: statusCode,
		Message:    message,
		Transport:  true,
	}
}
