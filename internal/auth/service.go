package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/shared"
)

// Service logs users in against the API token endpoint.
type Service struct {
	issuer TokenIssuer
}

// NewService constructs a new Service.
func NewService(issuer TokenIssuer) *Service {
	return &Service{issuer: issuer}
}

// Authenticate exchanges credentials for tokens and reads the identity from
// the access token. A 400 or 401 from the API means wrong credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Identity, gateway.Tokens, error) {
	username := strings.TrimSpace(creds.Username)
	tokens, err := s.issuer.Login(ctx, username, creds.Password)
	if err != nil {
		var netErr *gateway.NetworkError
		switch status := gateway.StatusOf(err); {
		case status == http.StatusBadRequest || status == http.StatusUnauthorized:
			return Identity{}, gateway.Tokens{}, shared.ErrInvalidCredentials
		case errors.As(err, &netErr):
			return Identity{}, gateway.Tokens{}, fmt.Errorf("%w: %w", shared.ErrBackendUnavailable, err)
		default:
			return Identity{}, gateway.Tokens{}, fmt.Errorf("login: %w", err)
		}
	}
	identity := Identity{Username: username}
	if claims, err := gateway.ParseClaims(tokens.Access); err == nil {
		identity.UserID = claims.UserID
		if claims.Username != "" {
			identity.Username = claims.Username
		}
	}
	return identity, tokens, nil
}
