package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource tells where Authenticate found the session token.
type TokenSource string

const (
	SourceJar       TokenSource = "jar"
	SourceSetCookie TokenSource = "set-cookie"
)

// Credentials identify the account used for the run.
type Credentials struct {
	Email    string
	Password string
}

// SessionToken is the opaque credential issued by the login endpoint.
type SessionToken struct {
	Value  string
	Source TokenSource
}

// String hides the token value so a token never lands in a log line by accident.
func (t SessionToken) String() string {
	if t.Value == "" {
		return "<none>"
	}
	return "***(" + string(t.Source) + ")"
}

// Empty reports whether no token is held.
func (t SessionToken) Empty() bool { return t.Value == "" }

// Claims decodes the token as a JWT without verifying the signature. It is
// meant for reporting only; a token that is not a JWT yields ok=false.
func (t SessionToken) Claims() (jwt.MapClaims, bool) {
	if t.Value == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.Value, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// ExpiresAt returns the exp claim when the token is a JWT that carries one.
func (t SessionToken) ExpiresAt() (time.Time, bool) {
	claims, ok := t.Claims()
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
