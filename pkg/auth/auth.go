package auth

import (
	"errors"
	"reflect"

	"github.com/gobarber/web/pkg/api"
)

// Session provides minimal session access needed by auth helpers.
type Session interface {
	Get(key string) any
	Set(key string, value any)
	Delete(key string)
}

// Session keys.
const (
	SessionKeyPrincipal = "gobarber:auth:principal"
	SessionKeyToken     = "gobarber:auth:token"
)

// ErrUnauthorized is returned when authentication is required but not present.
var ErrUnauthorized = errors.New("unauthorized: authentication required")

// Principal represents the signed-in user.
type Principal struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// FromUser converts a backend user into a Principal.
func FromUser(u api.User) Principal {
	return Principal{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

func isNilSession(session Session) bool {
	if session == nil {
		return true
	}
	v := reflect.ValueOf(session)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.Interface, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// SetPrincipal stores the principal and its bearer token on the session.
func SetPrincipal(session Session, p Principal, token string) {
	if isNilSession(session) {
		return
	}
	session.Set(SessionKeyPrincipal, p)
	session.Set(SessionKeyToken, token)
}

// UpdatePrincipal replaces the stored principal and keeps the token.
// It does nothing when the session is not authenticated.
func UpdatePrincipal(session Session, p Principal) {
	if !IsAuthenticated(session) {
		return
	}
	session.Set(SessionKeyPrincipal, p)
}

// Get returns the principal stored on the session.
func Get(session Session) (Principal, bool) {
	if isNilSession(session) {
		return Principal{}, false
	}
	p, ok := session.Get(SessionKeyPrincipal).(Principal)
	return p, ok
}

// Token returns the bearer token stored on the session, or "".
func Token(session Session) string {
	if isNilSession(session) {
		return ""
	}
	token, _ := session.Get(SessionKeyToken).(string)
	return token
}

// IsAuthenticated reports whether the session carries a principal.
func IsAuthenticated(session Session) bool {
	_, ok := Get(session)
	return ok
}

// Clear signs the session out.
func Clear(session Session) {
	if isNilSession(session) {
		return
	}
	session.Delete(SessionKeyPrincipal)
	session.Delete(SessionKeyToken)
}
