package auth

import (
	"context"

	"github.com/fabrica-erp/panel/internal/gateway"
)

// Credentials is the submitted login form.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Identity is the signed-in user as shown in the header.
type Identity struct {
	UserID   string
	Username string
}

// TokenIssuer exchanges credentials for API tokens.
type TokenIssuer interface {
	Login(ctx context.Context, username, password string) (gateway.Tokens, error)
}
