package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// subjectClaimAliases are the claim names historically used to carry the
// subject identifier, checked in priority order. Older tokens minted by
// .NET-era tooling used "nameid" or the WS-2005 URI instead of "sub".
var subjectClaimAliases = []string{
	"nameid",
	"sub",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
}

// ExtractSubject parses the token payload WITHOUT verifying the signature
// and returns the subject claim, or "" and false on any parse failure.
//
// This is a lower-trust read: it must never feed an authorization
// decision. Only Verify establishes trust in a token.
func ExtractSubject(tokenStr string) (string, bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return "", false
	}

	for _, name := range subjectClaimAliases {
		if v, ok := claims[name]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}

	return "", false
}
