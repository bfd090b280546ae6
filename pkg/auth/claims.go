package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

// Actor identifies the authenticated caller for permission checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.MemberRole
}

// IsStaff reports whether the actor carries staff privileges.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.MemberRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID        `json:"user_id"`
	Role   enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts validated claims into an Actor.
func (c *AccessTokenClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}
