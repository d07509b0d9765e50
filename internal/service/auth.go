package service

import (
	"context"
	"net/http"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/errors"
	"github.com/pressgate/pressgate/internal/gateway"
)

const (
	loginPath    = "/auth/login/"
	logoutPath   = "/auth/logout/"
	registerPath = "/auth/register/"
	userPath     = "/auth/user/"
)

// AuthService drives the backend authentication endpoints through a
// per-request gateway session. Credential cookies are persisted and
// invalidated by the session itself; this layer only shapes inputs and
// decodes results.
type AuthService struct{}

// NewAuthService constructs a new AuthService.
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login authenticates against the backend. On success the session has
// already persisted the issued credential cookies onto the response.
func (s *AuthService) Login(ctx context.Context, sess *gateway.Session, in model.LoginInput) (*model.PublicUser, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	res := sess.Do(ctx, gateway.Call{Method: http.MethodPost, Path: loginPath, Body: in})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var user model.PublicUser
	if err := res.Decode(&user); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode login response")
	}
	return &user, nil
}

// Register creates an account. The backend signs the new user in, so a
// successful call also carries fresh credential cookies.
func (s *AuthService) Register(ctx context.Context, sess *gateway.Session, in model.RegisterInput) (*model.PublicUser, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	res := sess.Do(ctx, gateway.Call{Method: http.MethodPost, Path: registerPath, Body: in})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var user model.PublicUser
	if err := res.Decode(&user); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode register response")
	}
	return &user, nil
}

// Logout revokes the backend session and always clears the local
// credential cookies, even when the backend call fails.
func (s *AuthService) Logout(ctx context.Context, sess *gateway.Session) error {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodPost, Path: logoutPath})
	sess.Store().DeleteSession()
	return resultError(res)
}

// CurrentUser fetches the authenticated user's profile.
func (s *AuthService) CurrentUser(ctx context.Context, sess *gateway.Session) (*model.PrivateUser, error) {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodGet, Path: userPath})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var user model.PrivateUser
	if err := res.Decode(&user); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode user response")
	}
	return &user, nil
}
