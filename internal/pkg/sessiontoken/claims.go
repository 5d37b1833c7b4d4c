package sessiontoken

import "github.com/golang-jwt/jwt"

// Payload is the signed content of the session cookie.
type Payload struct {
	jwt.StandardClaims `json:"standard_claims"`

	// SessionID names the in-memory session this browser owns.
	SessionID string `json:"sid"`
}
