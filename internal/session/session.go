package session

import (
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// Session is the caller identity handed to every authenticated backend call.
// ID is empty for visitors who never signed in.
type Session struct {
	ID        string
	Tokens    models.TokenPair
	ExpiresAt time.Time
}

// Authenticated reports whether an access token is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.Tokens.Access != ""
}

// AccessExpired reports whether the access token's exp claim is at or before
// now+leeway. Tokens whose claims cannot be read are treated as live; the
// backend answers 401 for those.
func (s *Session) AccessExpired(now time.Time, leeway time.Duration) bool {
	if !s.Authenticated() {
		return false
	}
	exp, ok := TokenExpiry(s.Tokens.Access)
	if !ok {
		return false
	}
	return !exp.After(now.Add(leeway))
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
