package probe

import (
	"fmt"
	"reflect"

	"github.com/okian/fanhop/internal/adapters/repository"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/stats"
)

// compareSimulation checks a direct simulation against its token replays.
func compareSimulation(w, replayW stats.Weights, token, replayToken string, t, decoded bracket.Tournament) error {
	if w != replayW {
		return fmt.Errorf("%w: model token decoded to different weights", ErrMismatch)
	}
	if token != replayToken {
		return fmt.Errorf("%w: model token replay produced %s, want %s", ErrMismatch, replayToken, token)
	}
	if t.Champion != decoded.Champion {
		return fmt.Errorf("%w: bracket token champion %s, want %s", ErrMismatch, decoded.Champion, t.Champion)
	}
	if !reflect.DeepEqual(t, decoded) {
		return fmt.Errorf("%w: bracket token replay differs", ErrMismatch)
	}
	return nil
}

// verifyLeaderboard checks ordering, competition ranks and the points of
// every probe model that made the board.
func verifyLeaderboard(board []repository.Entry, results []Result) error {
	byID := make(map[string]Result, len(results))
	for _, r := range results {
		if r.ModelID != "" {
			byID[r.ModelID] = r
		}
	}

	for i, e := range board {
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("%w: first entry has rank %d", ErrInconsistent, e.Rank)
			}
		} else {
			prev := board[i-1]
			switch {
			case e.Points > prev.Points:
				return fmt.Errorf("%w: entry %d has more points than entry %d", ErrInconsistent, i, i-1)
			case e.Points == prev.Points && e.Rank != prev.Rank:
				return fmt.Errorf("%w: tied entries %d and %d have ranks %d and %d", ErrInconsistent, i-1, i, prev.Rank, e.Rank)
			case e.Points < prev.Points && e.Rank != i+1:
				return fmt.Errorf("%w: entry %d has rank %d, want %d", ErrInconsistent, i, e.Rank, i+1)
			}
		}
		if r, ok := byID[e.ModelID]; ok && r.Graded && r.Points != e.Points {
			return fmt.Errorf("%w: %s listed with %d points, scored %d", ErrInconsistent, r.Name, e.Points, r.Points)
		}
	}
	return nil
}
