// Package modeltoken packs a model's weights and optional name into a short
// URL-safe token.
//
// Layout: seventeen 4-bit weights in stat order, two per byte with the
// even-indexed weight in the high nibble (nine bytes, low nibble of the last
// byte zero). A name follows as a 0x00 separator plus UTF-8 bytes.
package modeltoken

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/okian/fanhop/internal/codec/urlsafe"
	"github.com/okian/fanhop/internal/domain/stats"
)

// WeightBytes is the packed weight length.
const WeightBytes = (stats.Count + 1) / 2

const nameSeparator = 0x00

// ModelState is what a token carries. An empty Name means no name.
type ModelState struct {
	Name    string        `json:"name,omitempty"`
	Weights stats.Weights `json:"weights"`
}

// Validate fails when any weight is outside the legal range.
func (m ModelState) Validate() error {
	if err := m.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Encode returns the token for m. Out-of-range weights are an error rather
// than being clamped.
func Encode(m ModelState) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	n := WeightBytes
	if m.Name != "" {
		n += 1 + len(m.Name)
	}
	buf := make([]byte, WeightBytes, n)
	for i, v := range m.Weights {
		if i%2 == 0 {
			buf[i/2] = byte(v) << 4
		} else {
			buf[i/2] |= byte(v)
		}
	}
	if m.Name != "" {
		buf = append(buf, nameSeparator)
		buf = append(buf, m.Name...)
	}
	return urlsafe.Encode(buf), nil
}

// Decode unpacks a token without range checks, so nibbles 11..15 come back
// as-is. Use Parse for untrusted input.
func Decode(token string) (ModelState, error) {
	b, err := urlsafe.Decode(token)
	if err != nil {
		return ModelState{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(b) < WeightBytes {
		return ModelState{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformed, len(b), WeightBytes)
	}
	var m ModelState
	for i := range m.Weights {
		v := b[i/2]
		if i%2 == 0 {
			v >>= 4
		}
		m.Weights[i] = int(v & 0x0f)
	}
	if len(b) > WeightBytes && b[WeightBytes] == nameSeparator {
		name, err := unicode.UTF8.NewDecoder().Bytes(b[WeightBytes+1:])
		if err != nil {
			return ModelState{}, fmt.Errorf("%w: name: %v", ErrMalformed, err)
		}
		m.Name = string(name)
	}
	return m, nil
}

// Parse decodes and validates. Any failure rejects the whole token.
func Parse(token string) (ModelState, error) {
	m, err := Decode(token)
	if err != nil {
		return ModelState{}, err
	}
	if err := m.Validate(); err != nil {
		return ModelState{}, err
	}
	return m, nil
}
