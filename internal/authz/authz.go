// Package authz holds the authorization rules that sit between an
// authenticated principal and the resources it touches. The checks are pure
// comparisons; callers load any resource they need beforehand.
package authz

import (
	"errors"
	"fmt"

	"github.com/phrazzld/shareplate-api/internal/domain"
)

var (
	// ErrForbidden is the parent of every authorization failure.
	ErrForbidden = errors.New("forbidden")

	// ErrNotSelf indicates a principal asked for another user's listing.
	ErrNotSelf = fmt.Errorf("%w: principal does not match requested email", ErrForbidden)

	// ErrNotOwner indicates a principal tried to act on a resource they do not own.
	ErrNotOwner = fmt.Errorf("%w: principal does not own resource", ErrForbidden)
)

// SelfAccess allows the request only when pathEmail is the principal's own email.
func SelfAccess(principal domain.Principal, pathEmail string) error {
	if principal.Email == "" || principal.Email != pathEmail {
		return ErrNotSelf
	}
	return nil
}

// Ownership allows the request only when the principal is the resource owner.
func Ownership(principal domain.Principal, ownerEmail string) error {
	if principal.Email == "" || principal.Email != ownerEmail {
		return ErrNotOwner
	}
	return nil
}
