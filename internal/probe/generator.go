package probe

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/fanhop/internal/domain/stats"
)

// Weight distribution cases.
const (
	caseUniform = iota
	caseSparse
	casePresetNudge
	caseSingleStat
	caseZero
	numCases
)

const sparseKeepOneIn = 3

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// GenerateCandidates creates n uniquely named models with varied weights.
func GenerateCandidates(n int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{
			Name:    "probe-" + uuid.NewString()[:8],
			Weights: randomWeights(),
		}
	}
	return out
}

// randomWeights draws a weight vector from a mix of distributions so the
// probe covers chalk, lopsided and preset-like models.
func randomWeights() stats.Weights {
	var w stats.Weights
	switch randInt(numCases) {
	case caseUniform:
		for i := range w {
			w[i] = randInt(stats.MaxWeight + 1)
		}
	case caseSparse:
		for i := range w {
			if randInt(sparseKeepOneIn) == 0 {
				w[i] = 1 + randInt(stats.MaxWeight)
			}
		}
	case casePresetNudge:
		presets := stats.Presets()
		w = presets[randInt(len(presets))].Weights
		for i := range w {
			w[i] = clamp(w[i] + randInt(3) - 1)
		}
	case caseSingleStat:
		w[randInt(stats.Count)] = stats.MaxWeight
	case caseZero:
		// All zero: every game goes to the better seed.
	}
	return w
}

func clamp(v int) int {
	if v < stats.MinWeight {
		return stats.MinWeight
	}
	if v > stats.MaxWeight {
		return stats.MaxWeight
	}
	return v
}
