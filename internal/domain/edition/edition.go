// Package edition holds the immutable per-tournament inputs: the team
// registry, the 64-team seeding and, once the tournament is over, the
// actual results.
package edition

import (
	"fmt"
	"time"

	"github.com/okian/fanhop/internal/domain/stats"
)

// Region is one of the four sixteen-team regions.
type Region string

const (
	Midwest Region = "Midwest"
	West    Region = "West"
	East    Region = "East"
	South   Region = "South"
)

// NumRegions is the number of regions in a bracket.
const NumRegions = 4

// SeedsPerRegion is the number of seed lines per region.
const SeedsPerRegion = 16

// DefaultMaxRank is the league population size used when an edition does not set one.
const DefaultMaxRank = 350

// Regions returns the regions in bracket order. Semifinal one pairs the
// first two, semifinal two the last two.
func Regions() [NumRegions]Region {
	return [NumRegions]Region{Midwest, West, East, South}
}

// Index returns r's position in Regions.
func (r Region) Index() (int, bool) {
	for i, x := range Regions() {
		if x == r {
			return i, true
		}
	}
	return -1, false
}

// Team is one program's identity and statistical ranks.
type Team struct {
	Name       string
	Region     Region
	Conference string
	// Ranks are indexed by stats.Stat; 1 is best, 0 means unknown.
	Ranks [stats.Count]int
}

// Rank returns the team's rank for s, or 0 if unknown.
func (t Team) Rank(s stats.Stat) int { return t.Ranks[s] }

// Registry maps team name to stats.
type Registry map[string]Team

// Lookup returns the team with the given name.
func (r Registry) Lookup(name string) (Team, bool) {
	t, ok := r[name]
	return t, ok
}

// RegionSeeding holds team names by seed; index 0 is the 1 seed.
type RegionSeeding [SeedsPerRegion]string

// Team returns the team on seed line seed (1..16).
func (rs RegionSeeding) Team(seed int) string {
	if seed < 1 || seed > SeedsPerRegion {
		return ""
	}
	return rs[seed-1]
}

// SeedOf returns name's seed line, or 0 if the team is not in this region.
func (rs RegionSeeding) SeedOf(name string) int {
	for i, n := range rs {
		if n == name {
			return i + 1
		}
	}
	return 0
}

// Seeding holds the four regions in Regions order.
type Seeding [NumRegions]RegionSeeding

// Region returns the seeding for r.
func (s Seeding) Region(r Region) RegionSeeding {
	i, ok := r.Index()
	if !ok {
		return RegionSeeding{}
	}
	return s[i]
}

// RegionResults are the actual winners of one region, in bracket order.
type RegionResults struct {
	R64 [8]string
	R32 [4]string
	S16 [2]string
	E8  string
}

// Results are the actual outcomes of a finished tournament.
type Results struct {
	Regions   [NumRegions]RegionResults
	Finalists [2]string
	Champion  string
}

// Edition is one tournament year.
type Edition struct {
	ID      string
	Name    string
	AsOf    time.Time
	MaxRank int
	Teams   Registry
	Seeding Seeding
	// Results is nil until the tournament is decided.
	Results *Results
}

// HasResults reports whether actual outcomes are attached.
func (e *Edition) HasResults() bool { return e != nil && e.Results != nil }

// Validate checks the seeding against the registry: every region has
// sixteen filled seed lines, no team appears twice in a region, and every
// seeded team has stats.
func (e *Edition) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil edition", ErrInvalidEdition)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidEdition)
	}
	if e.MaxRank <= 0 {
		return fmt.Errorf("%w: %s: max_rank must be positive", ErrInvalidEdition, e.ID)
	}
	for i, r := range Regions() {
		seen := make(map[string]int, SeedsPerRegion)
		for j, name := range e.Seeding[i] {
			seed := j + 1
			if name == "" {
				return fmt.Errorf("%w: %s: %s seed %d is empty", ErrInvalidEdition, e.ID, r, seed)
			}
			if prev, dup := seen[name]; dup {
				return fmt.Errorf("%w: %s: %s seeds %d and %d are both %q", ErrInvalidEdition, e.ID, r, prev, seed, name)
			}
			seen[name] = seed
			if _, ok := e.Teams[name]; !ok {
				return fmt.Errorf("%w: %s: %s seed %d %q", ErrUnknownTeam, e.ID, r, seed, name)
			}
		}
	}
	for name, t := range e.Teams {
		for s, v := range t.Ranks {
			if v < 0 || v > e.MaxRank {
				return fmt.Errorf("%w: %s: %s %s rank %d outside [0,%d]", ErrInvalidEdition, e.ID, name, stats.Stat(s).Key(), v, e.MaxRank)
			}
		}
	}
	if e.Results != nil {
		if err := e.validateResults(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Edition) validateResults() error {
	check := func(where, name string) error {
		if name == "" {
			return fmt.Errorf("%w: %s: results %s is empty", ErrInvalidEdition, e.ID, where)
		}
		if _, ok := e.Teams[name]; !ok {
			return fmt.Errorf("%w: %s: results %s %q", ErrUnknownTeam, e.ID, where, name)
		}
		return nil
	}
	for i, r := range Regions() {
		rr := e.Results.Regions[i]
		names := make([]string, 0, 15)
		names = append(names, rr.R64[:]...)
		names = append(names, rr.R32[:]...)
		names = append(names, rr.S16[:]...)
		names = append(names, rr.E8)
		for _, n := range names {
			if err := check(string(r), n); err != nil {
				return err
			}
		}
	}
	for _, n := range e.Results.Finalists {
		if err := check("finalists", n); err != nil {
			return err
		}
	}
	return check("champion", e.Results.Champion)
}
