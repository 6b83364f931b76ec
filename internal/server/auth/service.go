// Package auth implements token issuance and verification, the single
// live session per user, and the per-request access guard.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/cryptox"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// TokenType selects which secret a token is signed and verified with.
type TokenType int

const (
	AccessToken TokenType = iota
	RefreshToken
)

// PrincipalStore is the persistence the auth core needs. Lookups of a
// missing user return common.ErrorNotFound.
type PrincipalStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetToken(ctx context.Context, id string, token *string) error
}

// Options configures token minting. Refresh tokens live twice as long as
// access tokens.
type Options struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Expiry        Expiry
}

// AuthResult is returned to the client on login and refresh.
type AuthResult struct {
	Token                 string `json:"token"`
	TokenExpiresIn        string `json:"tokenExpiresIn"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresIn string `json:"refreshTokenExpiresIn"`
}

type Service struct {
	store PrincipalStore
	opts  Options
	log   logging.Logger
}

func NewService(store PrincipalStore, opts Options, log logging.Logger) *Service {
	return &Service{store: store, opts: opts, log: log.With("component", "auth")}
}

func (s *Service) secret(t TokenType) []byte {
	if t == RefreshToken {
		return s.opts.RefreshSecret
	}
	return s.opts.AccessSecret
}

// Login mints an access/refresh pair for user and stores the access token
// as the user's only live session, replacing any previous one.
func (s *Service) Login(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessValidity, err := s.opts.Expiry.Duration()
	if err != nil {
		return nil, err
	}
	refreshExpiry := s.opts.Expiry.Double()
	refreshValidity, err := refreshExpiry.Duration()
	if err != nil {
		return nil, err
	}

	token, err := GenerateToken(user.Email, s.opts.AccessSecret, accessValidity)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := GenerateToken(user.Email, s.opts.RefreshSecret, refreshValidity)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.store.SetToken(ctx, user.ID, &token); err != nil {
		return nil, err
	}
	user.Token = &token

	s.log.Info(ctx, "user logged in", "user_id", user.ID)

	return &AuthResult{
		Token:                 token,
		TokenExpiresIn:        s.opts.Expiry.String(),
		RefreshToken:          refresh,
		RefreshTokenExpiresIn: refreshExpiry.String(),
	}, nil
}

// LoginWithPassword checks credentials and logs the user in. Unknown email
// and wrong password fail with the same common.ErrWrongCredentials.
func (s *Service) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if user == nil || !cryptox.VerifyPassword(password, user.Password) {
		return nil, common.ErrWrongCredentials
	}
	return s.Login(ctx, user)
}

// Logout clears the user's live session. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, user *models.User) error {
	if err := s.store.SetToken(ctx, user.ID, nil); err != nil {
		return err
	}
	user.Token = nil
	s.log.Info(ctx, "user logged out", "user_id", user.ID)
	return nil
}

// StripBearer removes a leading "Bearer " from an Authorization value.
func StripBearer(token string) string {
	return strings.TrimPrefix(token, common.BearerPrefix)
}

// DecodeToken verifies a token of the given type, with or without the
// "Bearer " prefix. Every failure, expiry included, is reported as
// common.ErrIncorrectAuthorizationToken.
func (s *Service) DecodeToken(token string, t TokenType) (*Claims, error) {
	claims, err := ParseToken(StripBearer(token), s.secret(t))
	if err != nil {
		return nil, common.ErrIncorrectAuthorizationToken
	}
	return claims, nil
}

// GetPrincipalFromPayload loads the user named by claims. A user that no
// longer exists yields (nil, nil).
func (s *Service) GetPrincipalFromPayload(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := s.store.GetByEmail(ctx, claims.Email)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.DecodeToken(refreshToken, RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.GetPrincipalFromPayload(ctx, claims)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrIncorrectRefreshToken
	}

	return s.Login(ctx, user)
}
