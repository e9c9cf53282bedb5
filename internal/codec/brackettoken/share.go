package brackettoken

import (
	"net/url"
	"strings"

	"github.com/okian/fanhop/internal/domain/bracket"
)

// Share-URL parameters. The edition id travels next to the token because
// the token alone cannot say which seeding it was cut from.
const (
	QueryParam   = "b"
	EditionParam = "e"
	SharePath    = "/bracket"
)

// ShareURL returns base + "/bracket?b=<token>&e=<edition>".
func ShareURL(base, editionID string, t bracket.Tournament) string {
	q := url.Values{}
	q.Set(QueryParam, Encode(t))
	if editionID != "" {
		q.Set(EditionParam, editionID)
	}
	return strings.TrimRight(base, "/") + SharePath + "?" + q.Encode()
}
