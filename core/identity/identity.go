// Package identity defines the identity collaborator contract. The core
// never authenticates users; it consumes the caller identity a transport
// layer resolves.
package identity

import (
	"errors"
	"net/http"

	"github.com/opfleet/fleethealth/core/model"
)

// ErrUnauthenticated signals a request with no resolvable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the resolved caller: an opaque profile id and its role.
type Identity struct {
	ProfileID string
	Role      model.UserRole
}

// Resolver extracts the caller identity from an incoming request.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// Static resolves every request to a fixed identity. Used in tests and
// single-tenant deployments.
type Static struct {
	ID Identity
}

// Resolve returns the fixed identity.
func (s Static) Resolve(*http.Request) (Identity, error) {
	if s.ID.ProfileID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return s.ID, nil
}
