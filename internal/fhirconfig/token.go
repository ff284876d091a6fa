package fhirconfig

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes what could be learned about an access token without
// verifying it. Opaque (non-JWT) tokens report IsJWT false and are assumed
// usable; only the target server can judge them.
type TokenInfo struct {
	IsJWT     bool
	ExpiresAt time.Time
	Expired   bool
}

// InspectToken decodes an access token's claims without verifying the
// signature, so the executor can warn about expired bearer tokens before a
// request is sent. Verification belongs to the target server, not to a test
// harness that never sees the signing keys.
func InspectToken(token string) TokenInfo {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	unverified, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenInfo{}
	}
	info := TokenInfo{IsJWT: true}
	exp, err := unverified.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return info
	}
	info.ExpiresAt = exp.Time
	info.Expired = exp.Time.Before(time.Now())
	return info
}
