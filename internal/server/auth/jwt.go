package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the principal's email. The registered ID (jti) is random,
// so two tokens minted for the same user in the same second still differ.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateToken signs an HS256 token for email that expires after validity.
func GenerateToken(email string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email: email,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString against secretKey. It fails with
// common.ErrTokenExpired for an expired token and common.ErrInvalidToken
// for anything else: bad signature, wrong algorithm, malformed input or a
// missing email claim.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Email == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Expiry is a token lifetime expressed as an amount and a unit, matching
// the way it is configured and reported to clients ("15m", "30m").
type Expiry struct {
	Amount int
	Unit   string
}

var units = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// Duration converts e to a time.Duration.
func (e Expiry) Duration() (time.Duration, error) {
	u, ok := units[e.Unit]
	if !ok {
		return 0, fmt.Errorf("unknown expiry unit %q", e.Unit)
	}
	return time.Duration(e.Amount) * u, nil
}

// Double returns an expiry twice as long in the same unit.
func (e Expiry) Double() Expiry {
	return Expiry{Amount: 2 * e.Amount, Unit: e.Unit}
}

func (e Expiry) String() string {
	return fmt.Sprintf("%d%s", e.Amount, e.Unit)
}
