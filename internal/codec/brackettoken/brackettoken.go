// Package brackettoken records the outcome of all 63 games as a short
// versioned token. Only who won each game is stored; teams and seeds are
// replayed from the edition's seeding on decode, so a token must be decoded
// against the same edition that produced it.
package brackettoken

import (
	"fmt"
	"strings"

	"github.com/okian/fanhop/internal/codec/urlsafe"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/edition"
)

// Prefix marks version one of the format.
const Prefix = "b1:"

// PayloadBytes holds 63 outcome bits plus one zero pad bit.
const PayloadBytes = (bracket.TotalGames + 7) / 8

// Bits returns the outcome bits in game order; a zero bit means Team1 won.
func Bits(t bracket.Tournament) [PayloadBytes]byte {
	var out [PayloadBytes]byte
	for i, g := range t.Games() {
		if !g.Team1Won() {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Encode returns the token for t.
func Encode(t bracket.Tournament) string {
	b := Bits(t)
	return Prefix + urlsafe.Encode(b[:])
}

// Decode replays the bits in token over e's seeding.
func Decode(token string, e *edition.Edition) (bracket.Tournament, error) {
	payload, ok := strings.CutPrefix(strings.TrimSpace(token), Prefix)
	if !ok {
		if v, _, found := strings.Cut(token, ":"); found && strings.HasPrefix(v, "b") {
			return bracket.Tournament{}, fmt.Errorf("%w: %q", ErrVersion, v)
		}
		return bracket.Tournament{}, fmt.Errorf("%w: missing %q prefix", ErrMalformed, Prefix)
	}
	b, err := urlsafe.Decode(payload)
	if err != nil {
		return bracket.Tournament{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(b) != PayloadBytes {
		return bracket.Tournament{}, fmt.Errorf("%w: %d bytes, want %d", ErrMalformed, len(b), PayloadBytes)
	}
	if pad := byte(0xff) >> (bracket.TotalGames % 8); b[PayloadBytes-1]&pad != 0 {
		return bracket.Tournament{}, fmt.Errorf("%w: nonzero padding", ErrMalformed)
	}

	r := &reader{bits: b}
	return bracket.Play(e, r), nil
}

// reader hands out bits in the order bracket.Play asks for games.
type reader struct {
	bits []byte
	pos  int
}

func (r *reader) Decide(bracket.Matchup) bool {
	bit := r.bits[r.pos/8] & (0x80 >> (r.pos % 8))
	r.pos++
	return bit == 0
}
