/*
Package sessiontoken signs and verifies the cookie that binds a browser to its
in-memory session. It carries no user identity; it only stops a client from
guessing its way into another browser's state.
*/
package sessiontoken

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "userdir_session"

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "userdir"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or expiry checks.
var ErrInvalidToken = errors.New("invalid or expired session token")

// GenerateToken signs a token for sessionID valid for duration.
func GenerateToken(sessionID string, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(duration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken validates tokenString and returns its payload.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Issuer != TokenIssuer || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// FromRequest returns the session payload carried by the request cookie, if valid.
func FromRequest(r *http.Request, secretKey string) (*Payload, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, err
	}
	return ParseToken(cookie.Value, secretKey)
}

// SetCookie writes the signed session cookie.
func SetCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
