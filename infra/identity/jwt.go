// Package identity resolves caller identity from HTTP requests using
// bearer JWTs. Tokens are issued by the account system; this side only
// verifies them and extracts the profile id and role.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	coreidentity "github.com/opfleet/fleethealth/core/identity"
	"github.com/opfleet/fleethealth/core/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// JWTResolver verifies HS256 bearer tokens against a shared secret.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver builds a resolver over the given signing secret.
func NewJWTResolver(secret string) (*JWTResolver, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTResolver{secret: []byte(secret)}, nil
}

// Resolve extracts and verifies the Authorization bearer token, returning
// the caller's profile id and role.
func (j *JWTResolver) Resolve(r *http.Request) (coreidentity.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return coreidentity.Identity{}, coreidentity.ErrUnauthenticated
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header {
		return coreidentity.Identity{}, coreidentity.ErrUnauthenticated
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return coreidentity.Identity{}, ErrExpiredToken
		}
		return coreidentity.Identity{}, ErrInvalidToken
	}
	if !token.Valid {
		return coreidentity.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return coreidentity.Identity{}, ErrInvalidToken
	}
	profileID, _ := claims["sub"].(string)
	if profileID == "" {
		return coreidentity.Identity{}, ErrInvalidToken
	}
	roleStr, _ := claims["role"].(string)
	role, err := model.ParseUserRole(roleStr)
	if err != nil {
		return coreidentity.Identity{}, ErrInvalidToken
	}
	return coreidentity.Identity{ProfileID: profileID, Role: role}, nil
}
