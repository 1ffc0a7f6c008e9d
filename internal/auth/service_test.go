package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/auth"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/shared"
)

func unsignedToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".c2ln"
}

func TestAuthenticateReadsClaims(t *testing.T) {
	access := unsignedToken(`{"user_id":7,"username":"Admin"}`)
	svc := auth.NewService(&stubIssuer{tokens: gateway.Tokens{Access: access, Refresh: "r"}})

	identity, tokens, err := svc.Authenticate(context.Background(), auth.Credentials{Username: " admin ", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "7", identity.UserID)
	assert.Equal(t, "Admin", identity.Username)
	assert.Equal(t, access, tokens.Access)
}

func TestAuthenticateErrors(t *testing.T) {
	svc := auth.NewService(&stubIssuer{})
	_, _, err := svc.Authenticate(context.Background(), auth.Credentials{Username: "admin", Password: "x"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	svc = auth.NewService(&stubIssuer{err: &gateway.HTTPError{Status: http.StatusBadRequest}})
	_, _, err = svc.Authenticate(context.Background(), auth.Credentials{Username: "admin", Password: "secreto"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	svc = auth.NewService(&stubIssuer{err: &gateway.NetworkError{Err: errors.New("refused")}})
	_, _, err = svc.Authenticate(context.Background(), auth.Credentials{Username: "admin", Password: "secreto"})
	assert.ErrorIs(t, err, shared.ErrBackendUnavailable)

	svc = auth.NewService(&stubIssuer{err: &gateway.HTTPError{Status: http.StatusInternalServerError}})
	_, _, err = svc.Authenticate(context.Background(), auth.Credentials{Username: "admin", Password: "secreto"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}
