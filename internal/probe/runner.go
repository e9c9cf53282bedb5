package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fanhop/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

type counters struct {
	simulated  atomic.Int64
	roundTrips atomic.Int64
	mismatches atomic.Int64
	saved      atomic.Int64
	failed     atomic.Int64
}

// Run executes the complete probe against a running service.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("probe")

	log.Info(ctx, "starting fanhop probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("models", config.NumModels),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("publish", config.Publish))

	client := NewClient(config.BaseURL, config.Owner, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Pick the edition
	ed, err := resolveEdition(ctx, client, config.EditionID)
	if err != nil {
		return stats, err
	}
	log.Info(ctx, "probing edition", logger.String("edition", ed.ID), logger.Bool("hasResults", ed.HasResults))

	// Step 3: Generate models
	candidates := GenerateCandidates(config.NumModels)
	stats.ModelsGenerated = len(candidates)

	// Step 4: Simulate, replay and optionally publish concurrently
	results := make([]Result, len(candidates))
	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Workers, 1))
	for i, cand := range candidates {
		g.Go(func() error {
			res, err := checkCandidate(gctx, client, config, ed, cand, &c)
			if err != nil {
				if errors.Is(err, ErrMismatch) {
					c.mismatches.Add(1)
				} else {
					c.failed.Add(1)
				}
				if config.Verbose {
					log.Warn(gctx, "candidate failed", logger.String("name", cand.Name), logger.Error(err))
				}
			}
			results[i] = res
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("probe interrupted: %w", err)
	}
	stats.Simulated = int(c.simulated.Load())
	stats.RoundTrips = int(c.roundTrips.Load())
	stats.Mismatches = int(c.mismatches.Load())
	stats.Saved = int(c.saved.Load())
	stats.Failed = int(c.failed.Load())

	// Step 5: Check the leaderboard once grading has caught up
	if config.Publish && ed.HasResults && stats.Saved > 0 {
		if err := verifyStandings(ctx, client, config, ed.ID, results, stats); err != nil {
			return stats, fmt.Errorf("standing verification failed: %w", err)
		}
	}

	// Step 6: Save results to file
	if config.OutputFile != "" {
		if err := saveResults(config.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d of %d models", ErrMismatch, stats.Mismatches, stats.ModelsGenerated)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

func resolveEdition(ctx context.Context, client *Client, id string) (EditionInfo, error) {
	eds, err := client.Editions(ctx)
	if err != nil {
		return EditionInfo{}, fmt.Errorf("list editions: %w", err)
	}
	for _, e := range eds {
		if (id == "" && e.Default) || (id != "" && e.ID == id) {
			return e, nil
		}
	}
	return EditionInfo{}, fmt.Errorf("edition %q not served", id)
}

// checkCandidate simulates one model and checks that its tokens replay to
// the same bracket.
func checkCandidate(ctx context.Context, client *Client, config *Config, ed EditionInfo, cand Candidate, c *counters) (Result, error) {
	res := Result{Candidate: cand}

	sim, err := client.Simulate(ctx, ed.ID, cand)
	if err != nil {
		return res, err
	}
	c.simulated.Add(1)
	res.Champion = sim.Champion
	res.ModelToken = sim.ModelToken
	res.BracketToken = sim.BracketToken

	replay, err := client.SimulateToken(ctx, ed.ID, sim.ModelToken)
	if err != nil {
		return res, err
	}
	decoded, err := client.Bracket(ctx, ed.ID, sim.BracketToken)
	if err != nil {
		return res, err
	}
	if err := compareSimulation(sim.Weights, replay.Weights, sim.BracketToken, replay.BracketToken, sim.Tournament, decoded.Tournament); err != nil {
		return res, fmt.Errorf("%s: %w", cand.Name, err)
	}
	c.roundTrips.Add(1)

	if ed.HasResults {
		card, err := client.ScoreBracket(ctx, ed.ID, sim.BracketToken)
		if err != nil {
			return res, err
		}
		res.Points = card.Total
		res.Graded = true
	}

	if config.Publish {
		m, err := client.SaveModel(ctx, ed.ID, cand)
		if err != nil {
			return res, err
		}
		if _, err := client.Publish(ctx, m.ID); err != nil {
			return res, err
		}
		res.ModelID = m.ID
		c.saved.Add(1)
	}
	return res, nil
}

// verifyStandings waits for every published model to be ranked, then
// checks its points and the leaderboard order.
func verifyStandings(ctx context.Context, client *Client, config *Config, editionID string, results []Result, stats *Stats) error {
	deadline := time.Now().Add(config.Settle)
	for _, res := range results {
		if res.ModelID == "" || !res.Graded {
			continue
		}
		for {
			st, err := client.Rank(ctx, editionID, res.ModelID)
			if err == nil {
				if st.Points != res.Points {
					return fmt.Errorf("%w: %s ranked with %d points, scored %d", ErrInconsistent, res.Name, st.Points, res.Points)
				}
				stats.RanksRetrieved++
				break
			}
			if !errors.Is(err, ErrStatus) || time.Now().After(deadline) {
				return fmt.Errorf("rank %s: %w", res.Name, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(PollInterval):
			}
		}
	}

	board, err := client.Leaderboard(ctx, editionID, config.TopN)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(board)
	return verifyLeaderboard(board, results)
}

func saveResults(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	logger.Get().Info(context.Background(), "results saved to file", logger.String("filename", filename))
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, modelsPerSecond float64
	if stats.ModelsGenerated > 0 {
		successRate = float64(stats.RoundTrips) / float64(stats.ModelsGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		modelsPerSecond = float64(stats.Simulated) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("modelsGenerated", stats.ModelsGenerated),
		logger.Int("simulated", stats.Simulated),
		logger.Int("roundTrips", stats.RoundTrips),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("saved", stats.Saved),
		logger.Int("failed", stats.Failed),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("modelsPerSecond", modelsPerSecond))
}
