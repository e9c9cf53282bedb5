package edition

import (
	"fmt"
	"sort"
)

// Catalog is an immutable set of editions with a designated default.
// Callers resolve an edition once per request and pass it down explicitly.
type Catalog struct {
	byID      map[string]*Edition
	defaultID string
}

// NewCatalog indexes editions by id. Later duplicates replace earlier ones,
// so a directory of overrides can shadow the embedded set.
func NewCatalog(defaultID string, editions ...*Edition) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Edition, len(editions)), defaultID: defaultID}
	for _, e := range editions {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		c.byID[e.ID] = e
	}
	if len(c.byID) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidEdition)
	}
	if _, ok := c.byID[defaultID]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownEdition, defaultID)
	}
	return c, nil
}

// Get returns the edition with the given id; an empty id selects the default.
func (c *Catalog) Get(id string) (*Edition, error) {
	if id == "" {
		id = c.defaultID
	}
	e, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdition, id)
	}
	return e, nil
}

// Default returns the default edition.
func (c *Catalog) Default() *Edition { return c.byID[c.defaultID] }

// DefaultID returns the default edition id.
func (c *Catalog) DefaultID() string { return c.defaultID }

// List returns every edition ordered by id.
func (c *Catalog) List() []*Edition {
	out := make([]*Edition, 0, len(c.byID))
	for _, e := range c.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
