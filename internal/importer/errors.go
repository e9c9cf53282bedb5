package importer

import "errors"

var (
	// ErrNoTable is returned when the document has no table matching the selector.
	ErrNoTable = errors.New("no stats table")
	// ErrNoTeamColumn is returned when no header names the team column.
	ErrNoTeamColumn = errors.New("no team column")
	// ErrBadCell is returned for a cell that does not hold a rank or seed.
	ErrBadCell = errors.New("bad cell")
	// ErrFetch is returned when a remote source cannot be read.
	ErrFetch = errors.New("fetch failed")
)
