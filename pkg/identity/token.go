package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSubject    = errors.New("token has no subject")
	ErrTokenExpired = errors.New("token is expired")
)

// TokenProvider derives the identity from a bearer token issued by the API's
// identity provider. The client cannot check the signature; the server does.
type TokenProvider struct {
	*Static
	now func() time.Time
}

// NewTokenProvider starts in the Resolving state until SignIn or SignOut is called.
func NewTokenProvider() *TokenProvider {
	return &TokenProvider{Static: NewStatic(Snapshot{State: Resolving}), now: time.Now}
}

// SignIn reads the subject and expiry of token and switches to SignedIn. A token
// that cannot be read leaves the provider signed out.
func (p *TokenProvider) SignIn(token string) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		p.SignOut()
		return fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		p.SignOut()
		return ErrNoSubject
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(p.now()) {
		p.SignOut()
		return ErrTokenExpired
	}
	p.Set(Snapshot{State: SignedIn, UserID: claims.Subject, Token: token})
	return nil
}
