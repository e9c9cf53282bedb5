package edition

import "errors"

var (
	// ErrInvalidEdition is returned when edition data is structurally wrong.
	ErrInvalidEdition = errors.New("invalid edition")
	// ErrUnknownTeam is returned when seeding or results name a team without stats.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrUnknownEdition is returned by Catalog.Get for an unregistered id.
	ErrUnknownEdition = errors.New("unknown edition")
)
