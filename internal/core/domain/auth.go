package domain

// Role defines user permission level
type Role string

const (
	RoleAdmin  Role = "admin"  // Search administration, index provisioning
	RoleMember Role = "member" // Search
)

// AuthContext contains authenticated user info for request context
type AuthContext struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsAdmin checks if the authenticated user is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// TokenClaims represents the JWT token payload issued by the session provider
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
