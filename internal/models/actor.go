package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates caller roles carried in access tokens.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// ActorClaims is the JWT payload identifying who performs a mutation. The
// engine never resolves identity itself; it trusts the token the surrounding
// application issued.
type ActorClaims struct {
	UserID   string   `json:"user_id"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the identity attached to every mutating operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Actor converts claims into the engine-facing identity.
func (c *ActorClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{ID: c.UserID, Name: c.FullName}
}
