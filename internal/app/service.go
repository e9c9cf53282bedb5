// Package service wires the bracket engine, the model store and the
// leaderboards into the operations the HTTP API exposes.
package service

import (
	"context"
	"runtime"
	"sync"

	eventqueue "github.com/okian/fanhop/internal/adapters/mq/queue"
	workerpool "github.com/okian/fanhop/internal/adapters/mq/worker"
	repository "github.com/okian/fanhop/internal/adapters/repository"
	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/domain/dedupe"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/pkg/logger"
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog *edition.Catalog
	store   storage.Store
	boards  map[string]*repository.TreapStore
	pending dedupe.Deduper
	jobs    *eventqueue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	baseURL     string

	// modelLocks serializes jobs that touch the same model.
	modelLocks [modelLockStripes]sync.Mutex

	started bool
	logger  logger.Logger
}

const modelLockStripes = 64

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of grading workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting grading jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the set of coalesced pending jobs.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBaseURL sets the public origin used in share links.
func WithBaseURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.baseURL = base
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over a catalog and a model store.
func New(catalog *edition.Catalog, store storage.Store, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		store:       store,
		boards:      make(map[string]*repository.TreapStore),
		workerCount: runtime.NumCPU(),
		queueSize:   4096,
		dedupeSize:  50000,
		baseURL:     "http://localhost:9080",
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, e := range catalog.List() {
		if e.HasResults() {
			s.boards[e.ID] = repository.NewTreapStore(repository.WithEdition(e.ID))
		}
	}
	return s
}

// Catalog returns the editions the service serves.
func (s *Service) Catalog() *edition.Catalog { return s.catalog }

// BaseURL returns the origin used in share links.
func (s *Service) BaseURL() string { return s.baseURL }

// Start rebuilds the leaderboards from the store and starts the grading workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting bracket service...")

	if err := s.rebuild(ctx); err != nil {
		return err
	}

	s.pending = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobs, workerpool.HandlerFunc(s.handle),
		workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "bracket service started",
		logger.Int("editions", len(s.catalog.List())),
		logger.Int("leaderboards", len(s.boards)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the grading queue and stops the workers.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping bracket service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "bracket service stopped")
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	boards := make(map[string]int, len(s.boards))
	for id, b := range s.boards {
		boards[id] = b.Count(ctx)
	}
	out := map[string]any{
		"started":         s.started,
		"default_edition": s.catalog.DefaultID(),
		"editions":        len(s.catalog.List()),
		"leaderboards":    boards,
		"workers":         s.workerCount,
		"queue_capacity":  s.queueSize,
	}
	if s.started {
		out["queue_length"] = s.jobs.Len(ctx)
		out["pending_jobs"] = s.pending.Size()
	}
	return out
}
