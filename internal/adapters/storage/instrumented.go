package storage

import (
	"context"
	"errors"
	"time"

	"github.com/okian/fanhop/pkg/logger"
	"github.com/okian/fanhop/pkg/metrics"
)

// Instrumented wraps a Store with metrics and error logging.
type Instrumented struct {
	next   Store
	driver string
	log    logger.Logger
}

var _ Store = (*Instrumented)(nil)

// Instrument decorates next. driver labels the metrics ("memory", "sqlite", "s3").
func Instrument(next Store, driver string, log logger.Logger) *Instrumented {
	return &Instrumented{next: next, driver: driver, log: log}
}

func (s *Instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordStoreOp(s.driver, op, err, ms)
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidModel) {
		return
	}
	metrics.RecordErrorByComponent("storage", op)
	if s.log != nil {
		s.log.Error(ctx, "model store operation failed",
			logger.String("driver", s.driver),
			logger.String("op", op),
			logger.Error(err),
		)
	}
}

func (s *Instrumented) Save(ctx context.Context, req SaveRequest) (Model, bool, error) {
	start := time.Now()
	m, updated, err := s.next.Save(ctx, req)
	s.observe(ctx, "save", start, err)
	return m, updated, err
}

func (s *Instrumented) Get(ctx context.Context, id string) (Model, error) {
	start := time.Now()
	m, err := s.next.Get(ctx, id)
	s.observe(ctx, "get", start, err)
	return m, err
}

func (s *Instrumented) List(ctx context.Context, ownerID string) ([]Model, error) {
	start := time.Now()
	ms, err := s.next.List(ctx, ownerID)
	s.observe(ctx, "list", start, err)
	return ms, err
}

func (s *Instrumented) SetPublic(ctx context.Context, ownerID, id string, public bool) (Model, error) {
	start := time.Now()
	m, err := s.next.SetPublic(ctx, ownerID, id, public)
	s.observe(ctx, "set_public", start, err)
	return m, err
}

func (s *Instrumented) Delete(ctx context.Context, ownerID, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, ownerID, id)
	s.observe(ctx, "delete", start, err)
	return err
}

func (s *Instrumented) GetBySlug(ctx context.Context, slug string) (Model, error) {
	start := time.Now()
	m, err := s.next.GetBySlug(ctx, slug)
	s.observe(ctx, "get_by_slug", start, err)
	return m, err
}

func (s *Instrumented) ListPublic(ctx context.Context) ([]Model, error) {
	start := time.Now()
	ms, err := s.next.ListPublic(ctx)
	s.observe(ctx, "list_public", start, err)
	return ms, err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
