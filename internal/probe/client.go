package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/fanhop/internal/adapters/http/api"
	"github.com/okian/fanhop/internal/adapters/repository"
	"github.com/okian/fanhop/internal/adapters/storage"
	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/codec/brackettoken"
	"github.com/okian/fanhop/internal/codec/modeltoken"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/scorecard"
)

// Client is a small JSON client for the fanhop API.
type Client struct {
	base  string
	owner string
	http  *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL, owner string, timeout time.Duration) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		owner: owner,
		http:  &http.Client{Timeout: timeout},
	}
}

// EditionInfo is one row of GET /editions.
type EditionInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HasResults bool   `json:"has_results"`
	Default    bool   `json:"default"`
}

// Decoded is the GET /bracket response.
type Decoded struct {
	EditionID  string             `json:"edition"`
	Tournament bracket.Tournament `json:"tournament"`
	Champion   string             `json:"champion"`
}

// Scored is the part of a GET /score response the probe checks.
type Scored struct {
	Card scorecard.Card `json:"scorecard"`
}

type saved struct {
	Model   storage.Model `json:"model"`
	Updated bool          `json:"updated"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// Editions lists the server's editions.
func (c *Client) Editions(ctx context.Context) ([]EditionInfo, error) {
	var out []EditionInfo
	err := c.do(ctx, http.MethodGet, "/editions", nil, &out)
	return out, err
}

// Simulate posts explicit weights.
func (c *Client) Simulate(ctx context.Context, editionID string, cand Candidate) (service.Simulation, error) {
	body := map[string]any{"edition": editionID, "name": cand.Name, "weights": cand.Weights}
	var out service.Simulation
	err := c.do(ctx, http.MethodPost, "/simulate", body, &out)
	return out, err
}

// SimulateToken replays a model token through GET /simulate.
func (c *Client) SimulateToken(ctx context.Context, editionID, token string) (service.Simulation, error) {
	q := url.Values{modeltoken.QueryParam: {token}}
	if editionID != "" {
		q.Set(brackettoken.EditionParam, editionID)
	}
	var out service.Simulation
	err := c.do(ctx, http.MethodGet, "/simulate?"+q.Encode(), nil, &out)
	return out, err
}

// Bracket decodes a bracket token through GET /bracket.
func (c *Client) Bracket(ctx context.Context, editionID, token string) (Decoded, error) {
	q := url.Values{brackettoken.QueryParam: {token}, brackettoken.EditionParam: {editionID}}
	var out Decoded
	err := c.do(ctx, http.MethodGet, "/bracket?"+q.Encode(), nil, &out)
	return out, err
}

// ScoreBracket grades a bracket token.
func (c *Client) ScoreBracket(ctx context.Context, editionID, token string) (scorecard.Card, error) {
	q := url.Values{brackettoken.QueryParam: {token}, brackettoken.EditionParam: {editionID}}
	var out Scored
	err := c.do(ctx, http.MethodGet, "/score?"+q.Encode(), nil, &out)
	return out.Card, err
}

// SaveModel saves a model for the client's owner.
func (c *Client) SaveModel(ctx context.Context, editionID string, cand Candidate) (storage.Model, error) {
	body := map[string]any{"name": cand.Name, "edition": editionID, "weights": cand.Weights}
	var out saved
	err := c.do(ctx, http.MethodPost, "/models", body, &out)
	return out.Model, err
}

// Publish marks a saved model public.
func (c *Client) Publish(ctx context.Context, id string) (storage.Model, error) {
	var out storage.Model
	err := c.do(ctx, http.MethodPatch, "/models/"+url.PathEscape(id), map[string]bool{"is_public": true}, &out)
	return out, err
}

// Leaderboard fetches the top n entries.
func (c *Client) Leaderboard(ctx context.Context, editionID string, n int) ([]repository.Entry, error) {
	q := url.Values{"limit": {fmt.Sprint(n)}, brackettoken.EditionParam: {editionID}}
	var out []repository.Entry
	err := c.do(ctx, http.MethodGet, "/leaderboard?"+q.Encode(), nil, &out)
	return out, err
}

// Rank fetches a model's standing.
func (c *Client) Rank(ctx context.Context, editionID, modelID string) (service.Standing, error) {
	q := url.Values{brackettoken.EditionParam: {editionID}}
	var out service.Standing
	err := c.do(ctx, http.MethodGet, "/rank/"+url.PathEscape(modelID)+"?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.owner != "" {
		req.Header.Set(api.OwnerHeader, c.owner)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
