package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/fanhop/internal/probe"
)

// Default configuration constants.
const (
	defaultNumModels = 500
	defaultTopN      = 50
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout   = 30 * time.Second
	defaultSettle    = 30 * time.Second
	defaultRunLimit  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numModels  = flag.Int("models", defaultNumModels, "Number of random models to generate")
		editionID  = flag.String("edition", "", "Edition to probe (default: the server's default)")
		publish    = flag.Bool("publish", false, "Save and publish every model, then verify the leaderboard")
		owner      = flag.String("owner", "probe", "X-Owner-ID for saved models")
		topN       = flag.Int("top", defaultTopN, "Number of leaderboard entries to fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "How long to wait for grading to catch up")
		outputFile = flag.String("output", "", "Write per-model results as JSON to this file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
	defer cancel()

	config := &probe.Config{
		BaseURL:    *baseURL,
		NumModels:  *numModels,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Settle:     *settle,
		EditionID:  *editionID,
		Owner:      *owner,
		Publish:    *publish,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
