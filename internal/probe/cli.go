package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/fanhop/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends probe logs to stdout and, when logFile is set, to that
// file as well.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp() {
	os.Stdout.WriteString(`fanhop probe
============

Generates random models and checks a running fanhop server end to end:
every simulation must replay identically from its model token and its
bracket token, and published models must show up on the leaderboard with
the points their bracket scores.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -models int
        Number of random models to generate (default 500)
  -edition string
        Edition to probe (default: the server's default edition)
  -publish
        Save and publish every model, then verify the leaderboard
  -owner string
        X-Owner-ID for saved models (default "probe")
  -top int
        Number of leaderboard entries to fetch (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        How long to wait for grading to catch up (default 30s)
  -output string
        Write per-model results as JSON to this file
  -log string
        Also write logs to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/probe -models 2000 -workers 16
  go run ./cmd/probe -publish -edition 2025 -output probe.json
`)
}
