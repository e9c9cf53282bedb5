package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/importer"
	"github.com/okian/fanhop/pkg/logger"
)

const outputPermission = 0o644

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Stderr.WriteString("editionimport: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("editionimport", flag.ContinueOnError)
	var (
		in       = fs.String("in", "", "Stats page: an http(s) URL or an HTML file (required)")
		selector = fs.String("table", importer.DefaultSelector, "CSS selector of the stats table")
		id       = fs.String("id", "", "Edition id, e.g. 2026 (required)")
		name     = fs.String("name", "", "Display name (default: \"<id> Tournament\")")
		asOf     = fs.String("as-of", "", "Date the stats were taken, any common format")
		maxRank  = fs.Int("max-rank", edition.DefaultMaxRank, "Number of ranked programs")
		basePath = fs.String("base", "", "Existing edition YAML supplying seeding, regions and conferences")
		out      = fs.String("out", "", "Output file (default: stdout)")
		strict   = fs.Bool("strict", false, "Fail unless the result is a complete, valid edition")
		cacheTTL = fs.Duration("cache-ttl", importer.DefaultCacheTTL, "How long fetched pages are reused")
		timeout  = fs.Duration("timeout", time.Minute, "Overall import timeout")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *id == "" {
		fs.Usage()
		return errors.New("-in and -id are required")
	}

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get().Named("editionimport")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	when, err := importer.ParseAsOf(*asOf)
	if err != nil {
		return err
	}

	var base *edition.Edition
	if *basePath != "" {
		data, err := os.ReadFile(*basePath)
		if err != nil {
			return fmt.Errorf("read base edition: %w", err)
		}
		if base, err = edition.Parse(data); err != nil {
			return fmt.Errorf("base edition %s: %w", *basePath, err)
		}
	}

	e, cols, rep, err := importer.Import(ctx,
		importer.NewFetcher(importer.WithCacheTTL(*cacheTTL)),
		importer.Source{Location: *in, Selector: *selector},
		importer.Meta{ID: *id, Name: *name, AsOf: when, MaxRank: *maxRank},
		base,
	)
	if err != nil {
		return err
	}

	log.Info(ctx, "parsed stats table",
		logger.Int("teams", len(e.Teams)),
		logger.Int("statColumns", len(cols.Stats)),
		logger.Any("ignoredColumns", cols.Ignored))
	if len(rep.Skipped) > 0 {
		log.Warn(ctx, "teams without a region were skipped", logger.Any("teams", rep.Skipped))
	}
	if rep.Invalid != nil {
		if *strict {
			return rep.Invalid
		}
		log.Warn(ctx, "edition is incomplete; finish the seeding by hand", logger.Error(rep.Invalid))
	}

	data, err := edition.Marshal(e)
	if err != nil {
		return fmt.Errorf("render edition: %w", err)
	}
	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, outputPermission); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Info(ctx, "edition written", logger.String("file", *out), logger.String("edition", e.ID))
	return nil
}
