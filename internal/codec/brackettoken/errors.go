package brackettoken

import "errors"

var (
	// ErrMalformed is returned for tokens with a bad prefix, alphabet, length or padding.
	ErrMalformed = errors.New("malformed bracket token")
	// ErrVersion is returned for a well-formed prefix of an unsupported version.
	ErrVersion = errors.New("unsupported bracket token version")
)
