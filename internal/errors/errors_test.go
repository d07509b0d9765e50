package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{"NotFound", NotFound("post not found"), ErrCodeNotFound, "post not found"},
		{"Unauthorized", Unauthorized("session expired"), ErrCodeUnauthorized, "session expired"},
		{"Forbidden", Forbidden("not the author"), ErrCodeForbidden, "not the author"},
		{"Unavailable", Unavailable("token endpoint unreachable"), ErrCodeUnavailable, "token endpoint unreachable"},
		{"BadGateway", BadGateway("unexpected response shape"), ErrCodeBadGateway, "unexpected response shape"},
		{"Internal", Internal("boom"), ErrCodeInternal, "boom"},
		{"Timeout", Timeout("backend too slow"), ErrCodeTimeout, "backend too slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeUnavailable, "token fetch failed")

	if err.Code != ErrCodeUnavailable {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeUnavailable)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve the cause for errors.Is")
	}
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrapf(cause, ErrCodeTimeout, "call to %s timed out", "/v1/posts/")

	if err.Code != ErrCodeTimeout {
		t.Errorf("Wrapf().Code = %v, want %v", err.Code, ErrCodeTimeout)
	}
	if err.Message != "call to /v1/posts/ timed out" {
		t.Errorf("Wrapf().Message = %q", err.Message)
	}
	if Wrapf(nil, ErrCodeTimeout, "x") != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		pred func(error) bool
		err  error
		want bool
	}{
		{"IsNotFound true", IsNotFound, NotFound("x"), true},
		{"IsNotFound false", IsNotFound, Internal("x"), false},
		{"IsUnauthorized true", IsUnauthorized, Unauthorized("x"), true},
		{"IsUnauthorized wrapped", IsUnauthorized, Wrap(Unauthorized("x"), ErrCodeInternal, "outer"), false},
		{"IsForbidden true", IsForbidden, Forbidden("x"), true},
		{"IsUnavailable true", IsUnavailable, Unavailable("x"), true},
		{"IsBadGateway true", IsBadGateway, BadGateway("x"), true},
		{"IsInternal true", IsInternal, Internal("x"), true},
		{"IsTimeout true", IsTimeout, Timeout("x"), true},
		{"nil error", IsNotFound, nil, false},
		{"plain error", IsNotFound, errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Unauthorized("x")); got != ErrCodeUnauthorized {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUnauthorized)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestGetMessage(t *testing.T) {
	if got := GetMessage(Unavailable("backend unreachable")); got != "backend unreachable" {
		t.Errorf("GetMessage() = %q", got)
	}
	if got := GetMessage(errors.New("plain")); got != "plain" {
		t.Errorf("GetMessage(plain) = %q", got)
	}
	if got := GetMessage(nil); got != "" {
		t.Errorf("GetMessage(nil) = %q, want empty", got)
	}
}
