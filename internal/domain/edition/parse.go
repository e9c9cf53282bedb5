package edition

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/okian/fanhop/internal/domain/stats"
)

//go:embed editions/*.yaml
var embedded embed.FS

const asOfLayout = "2006-01-02"

type rankMap map[string]int

// MarshalYAML keeps ranks in stat order.
func (m rankMap) MarshalYAML() (interface{}, error) {
	out := make(yaml.MapSlice, 0, len(m))
	for _, s := range stats.All() {
		if v, ok := m[s.Key()]; ok {
			out = append(out, yaml.MapItem{Key: s.Key(), Value: v})
		}
	}
	return out, nil
}

type fileTeam struct {
	Name       string  `yaml:"name"`
	Region     string  `yaml:"region"`
	Conference string  `yaml:"conference,omitempty"`
	Ranks      rankMap `yaml:"ranks"`
}

type fileRegionResults struct {
	R64 []string `yaml:"r64"`
	R32 []string `yaml:"r32"`
	S16 []string `yaml:"s16"`
	E8  string   `yaml:"e8"`
}

type fileResults struct {
	Regions   map[string]fileRegionResults `yaml:"regions"`
	Finalists []string                     `yaml:"finalists"`
	Champion  string                       `yaml:"champion"`
}

type file struct {
	ID      string                    `yaml:"id"`
	Name    string                    `yaml:"name"`
	AsOf    string                    `yaml:"as_of,omitempty"`
	MaxRank int                       `yaml:"max_rank,omitempty"`
	Teams   []fileTeam                `yaml:"teams"`
	Seeding map[string]map[int]string `yaml:"seeding"`
	Results *fileResults              `yaml:"results,omitempty"`
}

// Parse decodes and validates one edition document.
func Parse(data []byte) (*Edition, error) {
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEdition, err)
	}
	e, err := f.toEdition()
	if err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func parseRegion(s string) (Region, int, error) {
	for i, r := range Regions() {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, i, nil
		}
	}
	return "", -1, fmt.Errorf("%w: unknown region %q", ErrInvalidEdition, s)
}

func (f file) toEdition() (*Edition, error) {
	e := &Edition{
		ID:      strings.TrimSpace(f.ID),
		Name:    f.Name,
		MaxRank: f.MaxRank,
		Teams:   make(Registry, len(f.Teams)),
	}
	if e.MaxRank == 0 {
		e.MaxRank = DefaultMaxRank
	}
	if f.AsOf != "" {
		t, err := time.Parse(asOfLayout, f.AsOf)
		if err != nil {
			return nil, fmt.Errorf("%w: as_of: %v", ErrInvalidEdition, err)
		}
		e.AsOf = t
	}

	for _, ft := range f.Teams {
		if ft.Name == "" {
			return nil, fmt.Errorf("%w: team without a name", ErrInvalidEdition)
		}
		if _, dup := e.Teams[ft.Name]; dup {
			return nil, fmt.Errorf("%w: team %q listed twice", ErrInvalidEdition, ft.Name)
		}
		r, _, err := parseRegion(ft.Region)
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", ft.Name, err)
		}
		t := Team{Name: ft.Name, Region: r, Conference: ft.Conference}
		for k, v := range ft.Ranks {
			s, err := stats.Parse(k)
			if err != nil {
				return nil, fmt.Errorf("%w: team %q: %v", ErrInvalidEdition, ft.Name, err)
			}
			t.Ranks[s] = v
		}
		e.Teams[ft.Name] = t
	}

	for rname, seeds := range f.Seeding {
		_, idx, err := parseRegion(rname)
		if err != nil {
			return nil, err
		}
		for seed, name := range seeds {
			if seed < 1 || seed > SeedsPerRegion {
				return nil, fmt.Errorf("%w: %s seed %d outside 1..%d", ErrInvalidEdition, rname, seed, SeedsPerRegion)
			}
			e.Seeding[idx][seed-1] = name
		}
	}

	if f.Results != nil {
		res, err := f.Results.toResults()
		if err != nil {
			return nil, err
		}
		e.Results = res
	}
	return e, nil
}

func (fr fileResults) toResults() (*Results, error) {
	var res Results
	for rname, rr := range fr.Regions {
		_, idx, err := parseRegion(rname)
		if err != nil {
			return nil, err
		}
		out := &res.Regions[idx]
		if len(rr.R64) != len(out.R64) || len(rr.R32) != len(out.R32) || len(rr.S16) != len(out.S16) {
			return nil, fmt.Errorf("%w: results %s: want 8/4/2 winners, got %d/%d/%d",
				ErrInvalidEdition, rname, len(rr.R64), len(rr.R32), len(rr.S16))
		}
		copy(out.R64[:], rr.R64)
		copy(out.R32[:], rr.R32)
		copy(out.S16[:], rr.S16)
		out.E8 = rr.E8
	}
	if len(fr.Finalists) != len(res.Finalists) {
		return nil, fmt.Errorf("%w: results: want 2 finalists, got %d", ErrInvalidEdition, len(fr.Finalists))
	}
	copy(res.Finalists[:], fr.Finalists)
	res.Champion = fr.Champion
	return &res, nil
}

// Marshal renders e in the document format Parse reads. Teams are written
// region by region, alphabetically within a region.
func Marshal(e *Edition) ([]byte, error) {
	f := file{ID: e.ID, Name: e.Name, MaxRank: e.MaxRank}
	if !e.AsOf.IsZero() {
		f.AsOf = e.AsOf.Format(asOfLayout)
	}
	names := make([]string, 0, len(e.Teams))
	for n := range e.Teams {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := e.Teams[names[i]], e.Teams[names[j]]
		ai, _ := a.Region.Index()
		bi, _ := b.Region.Index()
		if ai != bi {
			return ai < bi
		}
		return a.Name < b.Name
	})
	for _, n := range names {
		t := e.Teams[n]
		ranks := make(rankMap, stats.Count)
		for _, s := range stats.All() {
			if v := t.Rank(s); v != 0 {
				ranks[s.Key()] = v
			}
		}
		f.Teams = append(f.Teams, fileTeam{Name: t.Name, Region: string(t.Region), Conference: t.Conference, Ranks: ranks})
	}
	f.Seeding = make(map[string]map[int]string, NumRegions)
	for i, r := range Regions() {
		seeds := make(map[int]string, SeedsPerRegion)
		for j, n := range e.Seeding[i] {
			if n != "" {
				seeds[j+1] = n
			}
		}
		if len(seeds) > 0 {
			f.Seeding[string(r)] = seeds
		}
	}
	if e.Results != nil {
		fr := &fileResults{
			Regions:   make(map[string]fileRegionResults, NumRegions),
			Finalists: e.Results.Finalists[:],
			Champion:  e.Results.Champion,
		}
		for i, r := range Regions() {
			rr := e.Results.Regions[i]
			fr.Regions[string(r)] = fileRegionResults{R64: rr.R64[:], R32: rr.R32[:], S16: rr.S16[:], E8: rr.E8}
		}
		f.Results = fr
	}
	return yaml.Marshal(f)
}

func loadFS(fsys fs.FS, dir string) ([]*Edition, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read editions %s: %w", dir, err)
	}
	var out []*Edition
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ext := path.Ext(ent.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, ent.Name()))
		if err != nil {
			return nil, fmt.Errorf("read edition %s: %w", ent.Name(), err)
		}
		e, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("edition %s: %w", ent.Name(), err)
		}
		out = append(out, e)
	}
	return out, nil
}

// LoadEmbedded returns the editions compiled into the binary.
func LoadEmbedded() ([]*Edition, error) {
	return loadFS(embedded, "editions")
}

// LoadDir parses every *.yaml file in dir.
func LoadDir(dir string) ([]*Edition, error) {
	return loadFS(os.DirFS(dir), ".")
}
