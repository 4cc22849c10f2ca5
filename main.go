package main

import (
	"context"
	"time"

	"github.com/opnlaas/v2vlens/app"
	"github.com/opnlaas/v2vlens/collect"
	"github.com/opnlaas/v2vlens/config"
	"github.com/opnlaas/v2vlens/db"
	"github.com/opnlaas/v2vlens/driveriso"
	"github.com/opnlaas/v2vlens/ingest"
	"github.com/opnlaas/v2vlens/watch"
	"github.com/z46-dev/go-logger"
)

var log *logger.Logger

func init() {
	log = logger.NewLogger().SetPrefix("[MAIN]", logger.BoldPurple)

	var err error
	if err = config.Init("config.toml"); err != nil {
		log.Errorf("Failed to initialize configuration: %v\n", err)
		panic(err)
	}
}

func main() {
	var err error

	if err = db.InitDB(); err != nil {
		log.Errorf("Failed to initialize database: %v\n", err)
		panic(err)
	}

	defer db.CloseDB()

	if isoPath := config.Config.DriverISO.Path; isoPath != "" {
		var image *db.DriverImage
		if image, err = driveriso.Index(isoPath); err != nil {
			log.Errorf("Failed to index driver ISO: %v\n", err)
			panic(err)
		}

		driveriso.SetCurrent(image)

		if err = db.DriverImages.Insert(image); err != nil {
			if err = db.DriverImages.Update(image); err != nil {
				log.Errorf("Failed to persist driver ISO index: %v\n", err)
				panic(err)
			}
		}
	}

	var watcher *watch.Watcher
	if watcher, err = watch.New(func(path string) {
		if ingestErr := ingest.File(path); ingestErr != nil {
			log.Errorf("Failed to ingest %s: %v\n", path, ingestErr)
		}
	}); err != nil {
		log.Errorf("Failed to initialize log watcher: %v\n", err)
		panic(err)
	}

	watcher.ScanExisting()

	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	go watcher.Start(ctx)

	if config.Config.Collect.Enabled {
		var collector *collect.Collector
		if collector, err = collect.NewCollector(); err != nil {
			log.Errorf("Failed to initialize log collector: %v\n", err)
			panic(err)
		}

		go func() {
			var ticker *time.Ticker = time.NewTicker(time.Duration(config.Config.Collect.IntervalMins) * time.Minute)
			defer ticker.Stop()

			collector.Sweep()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					collector.Sweep()
				}
			}
		}()
	}

	if err = app.StartApp(); err != nil {
		log.Errorf("Failed to run web server: %v\n", err)
		panic(err)
	}
}
