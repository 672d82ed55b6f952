package auth

import (
	"time"

	"github.com/massiben/rh-backend/internal/datastore"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"

	// sessionTTL feeds the expiresAt field written on login. The /me
	// lookup matches the original backend and checks session existence
	// only, never expiresAt; see DESIGN.md.
	sessionTTL = 24 * time.Hour
)

// Role is the role projection attached to auth responses.
type Role struct {
	ID      float64 `json:"id"`
	Code    string  `json:"code"`
	Libelle string  `json:"libelle"`
}

// AdminRole is the hard-coded role object returned by login, matching the
// original backend which granted every authenticated session the admin role.
var AdminRole = Role{ID: 1, Code: "ADMIN", Libelle: "Administrateur"}

// LoginResponse is the wire shape of a successful login.
type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         datastore.Record `json:"user"`
	Role         Role             `json:"role"`
	FullName     string           `json:"full_name"`
}

// TokenPair is the wire shape of a successful refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// WhoAmI is the wire shape of GET /me.
type WhoAmI struct {
	User datastore.Record `json:"user"`
	Role any              `json:"role"`
}

// Projection strips the password from a user record before it goes on the
// wire. The store keeps passwords in clear, so every outgoing user shape
// must pass through here.
func Projection(user datastore.Record) datastore.Record {
	out := user.Clone()
	delete(out, "password")
	return out
}

// firstRole returns the first entry of the user's roles array, or nil.
func firstRole(user datastore.Record) any {
	roles, _ := user["roles"].([]any)
	if len(roles) == 0 {
		return nil
	}
	return roles[0]
}

func fullName(user datastore.Record) string {
	if name, ok := user["full_name"].(string); ok {
		return name
	}
	name, _ := user["name"].(string)
	return name
}
