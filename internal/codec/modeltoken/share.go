package modeltoken

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/fanhop/internal/domain/stats"
)

// QueryParam is the share-URL parameter that carries a model token.
const QueryParam = "m"

// SharePath is the page a share URL points at.
const SharePath = "/simulate"

// ShareURL returns base + "/simulate?m=<token>", which replays the model.
func ShareURL(base string, m ModelState) (string, error) {
	token, err := Encode(m)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base, "/") + SharePath + "?" + QueryParam + "=" + token, nil
}

// ParseInput accepts either a full share URL or a bare token.
func ParseInput(input string) (ModelState, error) {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		token := u.Query().Get(QueryParam)
		if token == "" {
			return ModelState{}, fmt.Errorf("%w: %s", ErrNoToken, u.Redacted())
		}
		return Parse(token)
	}
	return Parse(input)
}

// ParseOrDefault returns the decoded model, or the default weights with no
// name when the input is empty or rejected.
func ParseOrDefault(input string) (ModelState, bool) {
	if strings.TrimSpace(input) == "" {
		return ModelState{Weights: stats.DefaultWeights()}, false
	}
	m, err := ParseInput(input)
	if err != nil {
		return ModelState{Weights: stats.DefaultWeights()}, false
	}
	return m, true
}
