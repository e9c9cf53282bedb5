package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fanhop/internal/adapters/storage"
	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/config"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/stats"
	"github.com/okian/fanhop/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestLoadCatalog(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then the embedded editions are served", func() {
			catalog, err := loadCatalog(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(catalog.DefaultID(), convey.ShouldEqual, "2025")
		})

		convey.Convey("When an editions directory adds a year", func() {
			base, err := loadCatalog(cfg)
			convey.So(err, convey.ShouldBeNil)
			next := *base.Default()
			next.ID = "2026"
			next.Name = "2026 Tournament"
			next.Results = nil
			data, err := edition.Marshal(&next)
			convey.So(err, convey.ShouldBeNil)

			dir := t.TempDir()
			convey.So(os.WriteFile(filepath.Join(dir, "2026.yaml"), data, 0o600), convey.ShouldBeNil)
			cfg.EditionsDir = dir
			cfg.DefaultEdition = "2026"

			convey.Convey("Then it is loaded next to the embedded ones", func() {
				catalog, err := loadCatalog(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(catalog.List()), convey.ShouldEqual, 2)
				convey.So(catalog.Default().HasResults(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the default edition is unknown", func() {
			cfg.DefaultEdition = "1999"
			_, err := loadCatalog(cfg)
			convey.So(errors.Is(err, edition.ErrUnknownEdition), convey.ShouldBeTrue)
		})

		convey.Convey("When the editions directory is missing", func() {
			cfg.EditionsDir = filepath.Join(t.TempDir(), "missing")
			_, err := loadCatalog(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestOpenStore(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given store configurations", t, func() {
		ctx := context.Background()
		cfg := config.New()
		log := logger.Get()

		convey.Convey("Then the memory store opens", func() {
			store, err := openStore(ctx, cfg, log)
			convey.So(err, convey.ShouldBeNil)
			convey.So(store.Close(), convey.ShouldBeNil)
		})

		convey.Convey("Then the sqlite store opens and persists", func() {
			cfg.StoreDriver = config.DriverSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "models.db")

			store, err := openStore(ctx, cfg, log)
			convey.So(err, convey.ShouldBeNil)
			m, _, err := store.Save(ctx, storage.SaveRequest{OwnerID: "alice", Name: "Chalk", Weights: stats.DefaultWeights()})
			convey.So(err, convey.ShouldBeNil)
			convey.So(store.Close(), convey.ShouldBeNil)

			reopened, err := openStore(ctx, cfg, log)
			convey.So(err, convey.ShouldBeNil)
			defer reopened.Close()
			got, err := reopened.Get(ctx, m.ID)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.Name, convey.ShouldEqual, "Chalk")
		})

		convey.Convey("Then an unknown driver is rejected", func() {
			cfg.StoreDriver = "postgres"
			_, err := openStore(ctx, cfg, log)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestBuildHandler(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given the assembled HTTP handler", t, func() {
		ctx := context.Background()
		cfg := config.New()
		catalog, err := loadCatalog(cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := service.New(catalog, storage.NewMemory())
		h := buildHandler(ctx, cfg, svc, logger.Get())

		for _, path := range []string{"/", "/healthz", "/metrics", "/openapi.yaml", "/api-docs", "/editions", "/simulate"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.Convey("Then GET "+path+" is served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		}
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns when it ends", func() {
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			returned := false
			select {
			case <-done:
				returned = true
			case <-time.After(2 * time.Second):
			}
			convey.So(returned, convey.ShouldBeTrue)
		})
	})
}
