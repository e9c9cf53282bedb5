// Package importer turns an HTML team-stats table into an edition document.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/fanhop/internal/domain/stats"
)

// DefaultSelector matches the first table in the document.
const DefaultSelector = "table"

// Row is one team's line of the table.
type Row struct {
	Team       string
	Conference string
	Region     string
	// Seed is 0 when the table has no seed column.
	Seed  int
	Ranks [stats.Count]int
}

// Columns records which header became which field.
type Columns struct {
	Team       int
	Conference int
	Region     int
	Seed       int
	Stats      map[stats.Stat]int
	Ignored    []string
}

type column int

const (
	colIgnored column = iota
	colTeam
	colConference
	colRegion
	colSeed
	colStat
)

var aliases = map[string]column{
	"team":       colTeam,
	"school":     colTeam,
	"name":       colTeam,
	"conference": colConference,
	"conf":       colConference,
	"region":     colRegion,
	"seed":       colSeed,
}

// normalize folds a header to lowercase letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// statByHeader matches a header against stat keys and labels.
func statByHeader(h string) (stats.Stat, bool) {
	n := normalize(h)
	if n == "" {
		return 0, false
	}
	for _, s := range stats.All() {
		if n == normalize(s.Key()) || n == normalize(s.Label()) {
			return s, true
		}
	}
	return 0, false
}

func classify(h string) (column, stats.Stat) {
	if c, ok := aliases[normalize(h)]; ok {
		return c, 0
	}
	if s, ok := statByHeader(h); ok {
		return colStat, s
	}
	return colIgnored, 0
}

// ParseTable reads the table matched by selector. The header row is the
// table's th cells, or its first row when it has none. Stat columns are
// matched by key ("opp_ppg") or label ("Opp PPG").
func ParseTable(r io.Reader, selector string) ([]Row, Columns, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, Columns{}, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, Columns{}, fmt.Errorf("%w: %q", ErrNoTable, selector)
	}

	rows := table.Find("tr")
	headerAt := 0
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if tr.Find("th").Length() > 0 {
			headerAt = i
			return false
		}
		return true
	})
	cols, err := readHeader(rows.Eq(headerAt))
	if err != nil {
		return nil, cols, err
	}

	var (
		out     []Row
		cellErr error
	)
	rows.Slice(headerAt+1, rows.Length()).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return true
		}
		row, err := readRow(cells, cols)
		if err != nil {
			cellErr = fmt.Errorf("row %d: %w", i+1, err)
			return false
		}
		if row.Team != "" {
			out = append(out, row)
		}
		return true
	})
	if cellErr != nil {
		return nil, cols, cellErr
	}
	return out, cols, nil
}

func readHeader(tr *goquery.Selection) (Columns, error) {
	cols := Columns{Team: -1, Conference: -1, Region: -1, Seed: -1, Stats: map[stats.Stat]int{}}
	tr.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		h := strings.TrimSpace(cell.Text())
		kind, s := classify(h)
		switch kind {
		case colTeam:
			if cols.Team < 0 {
				cols.Team = i
			}
		case colConference:
			cols.Conference = i
		case colRegion:
			cols.Region = i
		case colSeed:
			cols.Seed = i
		case colStat:
			if _, dup := cols.Stats[s]; !dup {
				cols.Stats[s] = i
			}
		default:
			if h != "" {
				cols.Ignored = append(cols.Ignored, h)
			}
		}
	})
	if cols.Team < 0 {
		return cols, ErrNoTeamColumn
	}
	return cols, nil
}

func readRow(cells *goquery.Selection, cols Columns) (Row, error) {
	text := func(i int) string {
		if i < 0 || i >= cells.Length() {
			return ""
		}
		return strings.Join(strings.Fields(cells.Eq(i).Text()), " ")
	}

	row := Row{
		Team:       text(cols.Team),
		Conference: text(cols.Conference),
		Region:     text(cols.Region),
	}
	if cols.Seed >= 0 {
		if v := text(cols.Seed); v != "" {
			seed, err := parseNumber(v)
			if err != nil {
				return row, fmt.Errorf("%s seed: %w", row.Team, err)
			}
			row.Seed = seed
		}
	}
	for s, i := range cols.Stats {
		v := text(i)
		if v == "" || v == "-" {
			continue
		}
		rank, err := parseNumber(v)
		if err != nil {
			return row, fmt.Errorf("%s %s: %w", row.Team, s.Key(), err)
		}
		row.Ranks[s] = rank
	}
	return row, nil
}

// parseNumber accepts "12", "T-12", "12th" and "#12".
func parseNumber(v string) (int, error) {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "T-"), "#")
	s = strings.TrimRightFunc(s, unicode.IsLetter)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadCell, v)
	}
	return n, nil
}
