package importer

import (
	"context"
	"fmt"

	"github.com/okian/fanhop/internal/domain/edition"
)

// Source is where and how to read the stats table.
type Source struct {
	// Location is an http(s) URL or a file path.
	Location string
	// Selector picks the table; DefaultSelector when empty.
	Selector string
}

// Import fetches src, parses its stats table and builds the edition.
func Import(ctx context.Context, f *Fetcher, src Source, meta Meta, base *edition.Edition) (*edition.Edition, Columns, Report, error) {
	body, err := f.Open(ctx, src.Location)
	if err != nil {
		return nil, Columns{}, Report{}, err
	}
	defer body.Close()

	rows, cols, err := ParseTable(body, src.Selector)
	if err != nil {
		return nil, cols, Report{}, fmt.Errorf("%s: %w", src.Location, err)
	}
	e, rep, err := Build(rows, meta, base)
	return e, cols, rep, err
}
