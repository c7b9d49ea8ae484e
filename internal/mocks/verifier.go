package mocks

import (
	"context"

	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
)

// Verifier implements auth.Verifier by looking tokens up in a map.
type Verifier struct {
	VerifyFn func(ctx context.Context, token string) (*domain.Principal, error)

	// Tokens maps accepted bearer tokens to the principal they identify.
	Tokens map[string]domain.Principal
	// Err, when set, is returned for every token.
	Err error
}

var _ auth.Verifier = (*Verifier)(nil)

// NewVerifier creates a verifier with no accepted tokens.
func NewVerifier() *Verifier {
	return &Verifier{Tokens: make(map[string]domain.Principal)}
}

// Issue registers token for email and returns the token for convenience.
func (m *Verifier) Issue(token, email string) string {
	m.Tokens[token] = domain.Principal{UID: "uid-" + token, Email: email, EmailVerified: true}
	return token
}

// Verify implements auth.Verifier.
func (m *Verifier) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &p, nil
}
