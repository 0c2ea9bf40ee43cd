package driven

import "github.com/bonlog/bonlog-core/internal/core/domain"

// AuthAdapter handles token cryptography.
// Tokens are issued by the session provider; this service only verifies them.
type AuthAdapter interface {
	// GenerateToken signs claims (used by tooling and tests)
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken verifies a token and extracts its claims
	ParseToken(token string) (*domain.TokenClaims, error)
}
