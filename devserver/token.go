package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lakehouselib/lakehouse/devserver/users"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// Claims is the payload of issued tokens.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens creates a token issuer. Refresh tokens live eight times longer
// than access tokens.
func NewTokens(secret string, accessTTL time.Duration) *Tokens {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: 8 * accessTTL,
		now:        time.Now,
	}
}

// Issue returns an access and a refresh token for u.
func (t *Tokens) Issue(u users.User) (access, refresh string, err error) {
	access, err = t.sign(u, accessTokenType, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = t.sign(u, refreshTokenType, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *Tokens) sign(u users.User, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email:     u.Email,
		Role:      u.Role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Verify parses an access token and returns the caller's identity.
// Errors wrap ErrUnauthorized.
func (t *Tokens) Verify(token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("token expired: %w", ErrUnauthorized)
		}
		return Identity{}, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}

	if claims.TokenType != accessTokenType {
		return Identity{}, fmt.Errorf("not an access token: %w", ErrUnauthorized)
	}

	return Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
