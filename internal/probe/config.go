package probe

import (
	"time"

	"github.com/okian/fanhop/internal/domain/stats"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumModels  int           // Number of random models to generate
	TopN       int           // Number of leaderboard entries to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for the leaderboard to catch up
	EditionID  string        // Edition to probe; empty means the server default
	Owner      string        // X-Owner-ID used for saved models
	Publish    bool          // Save and publish the generated models
	OutputFile string        // Output file for the generated models
	Verbose    bool          // Enable verbose logging
}

// Candidate is one generated model.
type Candidate struct {
	Name    string        `json:"name"`
	Weights stats.Weights `json:"weights"`
}

// Result is what the probe learned about one candidate.
type Result struct {
	Candidate
	ModelID      string `json:"model_id,omitempty"`
	Champion     string `json:"champion"`
	ModelToken   string `json:"model_token"`
	BracketToken string `json:"bracket_token"`
	Points       int    `json:"points"`
	Graded       bool   `json:"graded"`
}

// Stats holds probe statistics.
type Stats struct {
	ModelsGenerated    int
	Simulated          int
	RoundTrips         int
	Mismatches         int
	Saved              int
	Failed             int
	RanksRetrieved     int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
