package models

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of caller roles issued by the authentication service.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleSuperAdmin
	RoleAdmin
	RoleTeacher
	RoleParent
	RoleStudent
)

var roleNames = map[Role]string{
	RoleSuperAdmin: "SUPERADMIN",
	RoleAdmin:      "ADMIN",
	RoleTeacher:    "TEACHER",
	RoleParent:     "PARENT",
	RoleStudent:    "STUDENT",
}

// ParseRole maps a token role claim onto Role. Unknown names are an error,
// never silently downgraded.
func ParseRole(raw string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for role, candidate := range roleNames {
		if candidate == name {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", raw)
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText lets roles render by name in JSON and logs.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a role name.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// IsAdministrative reports whether the role may manage assignments.
func (r Role) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Caller is the authenticated identity performing a scheduler operation.
type Caller struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// JWTClaims is the access token payload issued by the authentication service.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
