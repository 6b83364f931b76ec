package auth

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Guard authenticates a single request. It holds no per-request state and
// never caches: the stored session token is re-read every time so that a
// newer login or a logout takes effect immediately.
type Guard struct {
	auth *Service
}

func NewGuard(auth *Service) *Guard {
	return &Guard{auth: auth}
}

// Authenticate resolves the principal behind an Authorization header value
// and checks it against roles (any role when empty). It fails with
// common.ErrIncorrectAuthorizationToken when the header is missing, does
// not verify, names an unknown user or is not the user's live session
// token, and with common.ErrForbidden when the role does not match.
func (g *Guard) Authenticate(ctx context.Context, header string, roles []models.Role) (*models.User, error) {
	if header == "" {
		return nil, common.ErrIncorrectAuthorizationToken
	}

	claims, err := g.auth.DecodeToken(header, AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := g.auth.GetPrincipalFromPayload(ctx, claims)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Token == nil || *user.Token != StripBearer(header) {
		return nil, common.ErrIncorrectAuthorizationToken
	}

	if !user.HasRole(roles) {
		return nil, common.ErrForbidden
	}

	return user, nil
}

type principalKey struct{}

// WithPrincipal stores the authenticated user in ctx.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// PrincipalFromContext returns the user stored by WithPrincipal, or nil.
func PrincipalFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(principalKey{}).(*models.User)
	return user
}
