package auth

import "errors"

// Common token verification errors
var (
	// ErrInvalidToken indicates the token format is invalid, the signature doesn't
	// match, or a required claim is wrong.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token was issued in the future
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrMissingEmail indicates a valid token that carries no email claim.
	// Every operation is keyed by email, so such tokens are rejected.
	ErrMissingEmail = errors.New("authentication token has no email claim")

	// ErrCertificateFetch indicates the signing certificates could not be
	// retrieved. It is an infrastructure failure, not a verdict on the token.
	ErrCertificateFetch = errors.New("failed to fetch token signing certificates")
)

// IsCredentialError reports whether err is a verdict against the presented
// credential, as opposed to a failure to reach the identity provider.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrTokenNotYetValid) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMissingEmail)
}
