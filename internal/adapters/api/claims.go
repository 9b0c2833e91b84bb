package api

import (
	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ParseTokenClaims decodes JWT claims without verifying the signature. It is
// for display only; opaque tokens report ok=false.
func ParseTokenClaims(token string) (domain.TokenClaims, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.TokenClaims{}, false
	}

	result := domain.TokenClaims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, true
}
