package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/fanhop/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DefaultEdition, convey.ShouldEqual, "2025")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 4096)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that cannot work", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = " " },
			"bad log format":      func(c *config.Config) { c.LogFormat = "xml" },
			"no default edition":  func(c *config.Config) { c.DefaultEdition = "" },
			"unknown driver":      func(c *config.Config) { c.StoreDriver = "postgres" },
			"sqlite without path": func(c *config.Config) { c.StoreDriver = config.DriverSQLite; c.SQLitePath = "" },
			"s3 without bucket":   func(c *config.Config) { c.StoreDriver = config.DriverS3 },
			"zero workers":        func(c *config.Config) { c.WorkerCount = 0 },
			"zero limit":          func(c *config.Config) { c.MaxLeaderboardLimit = 0 },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+name+" is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then an s3 store with a bucket is accepted", func() {
			cfg := config.New()
			cfg.StoreDriver = config.DriverS3
			cfg.S3Bucket = "brackets"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
