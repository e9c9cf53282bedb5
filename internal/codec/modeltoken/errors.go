package modeltoken

import "errors"

var (
	// ErrMalformed is returned for tokens that are not valid base64url or are too short.
	ErrMalformed = errors.New("malformed model token")
	// ErrInvalid is returned when a decoded weight is outside [0,10].
	ErrInvalid = errors.New("invalid model weights")
	// ErrNoToken is returned when a URL carries no model parameter.
	ErrNoToken = errors.New("no model token")
)
