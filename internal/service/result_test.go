package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressgate/pressgate/internal/errors"
	"github.com/pressgate/pressgate/internal/gateway"
)

func TestResultError_Mapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		res   *gateway.Result
		check func(t *testing.T, err error)
	}{
		{
			name:  "success is nil",
			res:   &gateway.Result{Kind: gateway.KindSuccess, StatusCode: 200},
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "fail becomes validation error",
			res: &gateway.Result{
				Kind:        gateway.KindFail,
				StatusCode:  400,
				FieldErrors: gateway.FieldErrors{"title": gateway.NewFieldMessages("Too short.")},
			},
			check: func(t *testing.T, err error) {
				ve, ok := gateway.AsValidation(err)
				assert.True(t, ok)
				assert.Contains(t, ve.Fields, "title")
			},
		},
		{
			name: "transport fault is unavailable",
			res:  &gateway.Result{Kind: gateway.KindError, Transport: true, Message: "unreachable"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsUnavailable(err))
			},
		},
		{
			name: "timeout narrows transport fault",
			res:  &gateway.Result{Kind: gateway.KindError, Transport: true, Timeout: true, Message: "too slow"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsTimeout(err))
				assert.Equal(t, errors.ErrCodeTimeout, errors.GetCode(err))
			},
		},
		{
			name: "unauthorized code",
			res:  &gateway.Result{Kind: gateway.KindError, StatusCode: 403, Code: gateway.CodeUnauthorized},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsUnauthorized(err))
			},
		},
		{
			name: "bad gateway status",
			res:  &gateway.Result{Kind: gateway.KindError, StatusCode: 502},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsBadGateway(err))
			},
		},
		{
			name: "plain 500 is internal",
			res:  &gateway.Result{Kind: gateway.KindError, StatusCode: 500, Message: "boom"},
			check: func(t *testing.T, err error) {
				assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(err))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, resultError(tt.res))
		})
	}
}
