/*
Package randx generates cryptographically secure random identifiers.

Session IDs are fixed-length Base62 strings; event IDs are UUID v4 strings.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the number of characters in the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// SessionIDLength is the fixed length of a session identifier.
	SessionIDLength = 22
)

// SessionID returns a random Base62 string of length SessionIDLength.
func SessionID() (string, error) {
	result := make([]byte, SessionIDLength)

	for i := range SessionIDLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for session id: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// IsValidSessionID reports whether id has the shape produced by SessionID.
func IsValidSessionID(id string) bool {
	if len(id) != SessionIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// EventID returns a UUID v4 string identifying a pushed event or websocket client.
func EventID() string {
	return uuid.New().String()
}
