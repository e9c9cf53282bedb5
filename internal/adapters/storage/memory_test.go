package storage_test

import (
	"testing"
	"time"

	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/adapters/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, now func() time.Time) storage.Store {
		return storage.NewMemory(storage.WithClock(now))
	})
}

func TestInstrumentedStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, now func() time.Time) storage.Store {
		return storage.Instrument(storage.NewMemory(storage.WithClock(now)), "memory", nil)
	})
}
