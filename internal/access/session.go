// Package access maps authenticated sessions to roles and gates entry to
// protected operations. A session is an HS256-signed token issued at login
// and held by the caller; its lifecycle (created at login, discarded at
// logout) is the caller's responsibility, not the core's.
package access

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/models"
)

// Claims carries the authenticated principal inside a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Principal is the authenticated identity extracted from a valid session.
type Principal struct {
	ID       string
	Username string
	Role     models.Role
}

// IssueSession signs a session token for user, valid for validity.
func IssueSession(user *models.User, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})

	return token.SignedString(secretKey)
}

// ParseSession verifies the token signature and expiry and returns the
// embedded principal. Any invalid, expired or foreign token yields
// common.ErrNotAuthenticated.
func ParseSession(tokenString string, secretKey []byte) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrNotAuthenticated
	}

	return &Principal{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     models.Role(claims.Role),
	}, nil
}
