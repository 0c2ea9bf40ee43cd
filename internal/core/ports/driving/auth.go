package driving

import (
	"context"

	"github.com/bonlog/bonlog-core/internal/core/domain"
)

// AuthService validates bearer tokens for the API
type AuthService interface {
	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
