package repository

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/okian/fanhop/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: points DESC, then modelID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the board
// from best to worst. Ranks use competition ranking: equal points share a
// rank and the next distinct score skips ahead.

// record stores the display fields for a ranked model.
type record struct {
	points   int
	name     string
	slug     string
	champion string
}

// treap node
type node struct {
	id     string
	points int
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aPoints, aID) should appear before (bPoints, bID).
func less(aPoints int, aID string, bPoints int, bID string) bool {
	if aPoints != bPoints {
		return aPoints > bPoints
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priority hashes the id so the tree shape does not depend on insert order.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, points int) *node {
	if n == nil {
		return &node{id: id, points: points, prio: priority(id), size: 1}
	}
	if less(points, id, n.points, n.id) {
		n.left = insert(n.left, id, points)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, points)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, points int) *node {
	if n == nil {
		return nil
	}
	switch {
	case points == n.points && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, points)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, points)
		}
	case less(points, id, n.points, n.id):
		n.left = deleteNode(n.left, id, points)
	default:
		n.right = deleteNode(n.right, id, points)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes hold strictly more than points.
func countAbove(n *node, points int) int {
	count := 0
	for n != nil {
		if n.points > points {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit ids in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a Store backed by a size-augmented treap.
type TreapStore struct {
	mu      sync.RWMutex
	root    *node
	byID    map[string]record
	edition string
}

// NewTreapStore constructs an empty board.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:    make(map[string]record),
		edition: "default",
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateLeaderboardSize(s.edition, 0)
	return s
}

// Edition returns the edition id the board was built for.
func (s *TreapStore) Edition() string { return s.edition }

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, e Entry) (bool, error) {
	if e.ModelID == "" || e.Points < 0 {
		metrics.RecordErrorByComponent("leaderboard", "invalid_entry")
		return false, ErrInvalidEntry
	}

	s.mu.Lock()
	old, exists := s.byID[e.ModelID]
	if exists {
		s.root = deleteNode(s.root, e.ModelID, old.points)
	}
	s.byID[e.ModelID] = record{points: e.Points, name: e.Name, slug: e.Slug, champion: e.Champion}
	s.root = insert(s.root, e.ModelID, e.Points)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate()
	if !exists {
		metrics.UpdateLeaderboardSize(s.edition, count)
	}
	return !exists, nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(ctx context.Context, modelID string) (bool, error) {
	s.mu.Lock()
	old, ok := s.byID[modelID]
	if ok {
		s.root = deleteNode(s.root, modelID, old.points)
		delete(s.byID, modelID)
	}
	count := len(s.byID)
	s.mu.Unlock()

	if ok {
		metrics.UpdateLeaderboardSize(s.edition, count)
	}
	return ok, nil
}

// Rank returns the current rank and points for a model in O(log n).
func (s *TreapStore) Rank(ctx context.Context, modelID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[modelID]
	if !ok {
		metrics.RecordErrorByComponent("leaderboard", "not_found")
		return Entry{}, ErrNotFound
	}
	return s.entry(modelID, rec, 1+countAbove(s.root, rec.points)), nil
}

// TopN returns the top N entries ordered by points desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("leaderboard", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		rank := i + 1
		if i > 0 && nodes[i-1].points == nd.points {
			rank = out[i-1].Rank
		}
		out[i] = s.entry(nd.id, s.byID[nd.id], rank)
	}
	return out, nil
}

// Count returns the number of ranked models.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Reset empties the board, typically before a rebuild.
func (s *TreapStore) Reset(ctx context.Context) {
	s.mu.Lock()
	s.root = nil
	s.byID = make(map[string]record)
	s.mu.Unlock()
	metrics.UpdateLeaderboardSize(s.edition, 0)
}

func (s *TreapStore) entry(id string, rec record, rank int) Entry {
	return Entry{
		Rank:     rank,
		ModelID:  id,
		Name:     rec.name,
		Slug:     rec.slug,
		Champion: rec.champion,
		Points:   rec.points,
	}
}
