package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/stats"
)

// Meta names the edition being imported.
type Meta struct {
	ID      string
	Name    string
	AsOf    time.Time
	MaxRank int
}

// Report describes what Build could not place.
type Report struct {
	// Skipped lists rows whose region is unknown.
	Skipped []string
	// Invalid is the edition's validation error, nil once the seeding is complete.
	Invalid error
}

// ParseAsOf reads a loosely formatted date such as "March 16, 2025" or
// "2025-03-16". Empty input is the zero time.
func ParseAsOf(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("as-of %q: %w", s, err)
	}
	return t, nil
}

func regionOf(s string) (edition.Region, int, bool) {
	for i, r := range edition.Regions() {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, i, true
		}
	}
	return "", -1, false
}

// Build assembles an edition from table rows. A team seeded in more than one
// region appears on one row per placement; its first row sets its home region.
// base, when set, supplies the seeding and any region or conference the table
// leaves out.
func Build(rows []Row, meta Meta, base *edition.Edition) (*edition.Edition, Report, error) {
	var rep Report
	if strings.TrimSpace(meta.ID) == "" {
		return nil, rep, fmt.Errorf("%w: id must not be empty", edition.ErrInvalidEdition)
	}
	e := &edition.Edition{
		ID:      strings.TrimSpace(meta.ID),
		Name:    meta.Name,
		AsOf:    meta.AsOf,
		MaxRank: meta.MaxRank,
		Teams:   make(edition.Registry, len(rows)),
	}
	if e.MaxRank <= 0 {
		e.MaxRank = edition.DefaultMaxRank
	}
	if e.Name == "" {
		e.Name = e.ID + " Tournament"
	}
	if base != nil {
		e.Seeding = base.Seeding
	}

	seeded := map[[2]int]string{}
	for _, row := range rows {
		var prev edition.Team
		if base != nil {
			prev, _ = base.Teams.Lookup(row.Team)
		}

		region, idx, ok := regionOf(row.Region)
		if !ok {
			region = prev.Region
			idx, ok = region.Index()
		}
		if !ok {
			rep.Skipped = append(rep.Skipped, row.Team)
			continue
		}
		if seen, dup := e.Teams[row.Team]; dup {
			if seen.Ranks != row.Ranks {
				return nil, rep, fmt.Errorf("%w: team %q listed twice with different stats", edition.ErrInvalidEdition, row.Team)
			}
		} else {
			for s, v := range row.Ranks {
				if v > e.MaxRank {
					return nil, rep, fmt.Errorf("%w: %s %s rank %d above max_rank %d", edition.ErrInvalidEdition, row.Team, stats.Stat(s).Key(), v, e.MaxRank)
				}
			}
			conf := row.Conference
			if conf == "" {
				conf = prev.Conference
			}
			e.Teams[row.Team] = edition.Team{Name: row.Team, Region: region, Conference: conf, Ranks: row.Ranks}
		}

		if row.Seed == 0 {
			continue
		}
		if row.Seed < 1 || row.Seed > edition.SeedsPerRegion {
			return nil, rep, fmt.Errorf("%w: %s seed %d outside 1..%d", edition.ErrInvalidEdition, row.Team, row.Seed, edition.SeedsPerRegion)
		}
		slot := [2]int{idx, row.Seed}
		if other, taken := seeded[slot]; taken {
			return nil, rep, fmt.Errorf("%w: %s seed %d is both %q and %q", edition.ErrInvalidEdition, region, row.Seed, other, row.Team)
		}
		seeded[slot] = row.Team
		e.Seeding[idx][row.Seed-1] = row.Team
	}

	rep.Invalid = e.Validate()
	return e, rep, nil
}
