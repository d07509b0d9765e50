package service

import (
	"github.com/pressgate/pressgate/internal/errors"
	"github.com/pressgate/pressgate/internal/gateway"
)

// resultError converts a non-success gateway result into a typed error.
// Fail envelopes become ValidationError so handlers can re-render forms
// with per-field messages. Error envelopes map onto the application
// error taxonomy by status code and backend code.
func resultError(res *gateway.Result) error {
	switch res.Kind {
	case gateway.KindSuccess:
		return nil
	case gateway.KindFail:
		return &gateway.ValidationError{Fields: res.FieldErrors}
	default:
		return appError(res)
	}
}

func appError(res *gateway.Result) error {
	if res.Timeout {
		return errors.Timeout(res.Message)
	}
	if res.Transport {
		return errors.Unavailable(res.Message)
	}
	if res.Unauthorized() {
		return errors.Unauthorized(res.Message)
	}
	switch res.StatusCode {
	case 403:
		return errors.Forbidden(res.Message)
	case 404:
		return errors.NotFound(res.Message)
	case 502, 503, 504:
		return errors.BadGateway(res.Message)
	default:
		return errors.Internal(res.Message)
	}
}
