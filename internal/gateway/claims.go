package gateway

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the access token payload the panel displays.
type Claims struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// ParseClaims decodes an access token without verifying its signature. The
// backend remains the authority; the panel only reads display data.
func ParseClaims(token string) (Claims, error) {
	if token == "" {
		return Claims{}, errors.New("gateway: empty token")
	}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("gateway: parse token: %w", err)
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("gateway: unexpected claims type")
	}
	var claims Claims
	switch v := mapClaims["user_id"].(type) {
	case string:
		claims.UserID = v
	case float64:
		claims.UserID = strconv.FormatInt(int64(v), 10)
	}
	if name, ok := mapClaims["username"].(string); ok {
		claims.Username = name
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Expired reports whether the claims carry an expiry in the past.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
