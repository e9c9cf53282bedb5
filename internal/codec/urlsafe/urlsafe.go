// Package urlsafe is the unpadded base64url text form shared by every share token.
package urlsafe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrAlphabet is returned for input outside the base64url alphabet.
var ErrAlphabet = errors.New("invalid base64url")

// Encode returns b in base64url without padding.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode accepts unpadded or padded base64url in canonical form only, so every
// payload has exactly one text form. Line breaks and the standard alphabet's
// '+' and '/' are rejected.
func Decode(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: line break in input", ErrAlphabet)
	}
	b, err := base64.RawURLEncoding.Strict().DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlphabet, err)
	}
	return b, nil
}
