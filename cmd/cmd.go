package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/sunweg-integration/internal/pkg/config"
	"github.com/anicoll/sunweg-integration/internal/pkg/contxt"
	"github.com/anicoll/sunweg-integration/internal/pkg/database"
	"github.com/anicoll/sunweg-integration/internal/pkg/database/migration"
	"github.com/anicoll/sunweg-integration/internal/pkg/metrics"
	"github.com/anicoll/sunweg-integration/internal/pkg/mqtt"
	"github.com/anicoll/sunweg-integration/internal/pkg/poller"
	"github.com/anicoll/sunweg-integration/internal/pkg/publisher"
	"github.com/anicoll/sunweg-integration/internal/pkg/server"
	"github.com/anicoll/sunweg-integration/internal/pkg/sunweg"
)

var errCleanup = errors.New("database cleanup failed")

// SunwegCommand runs the polling service: scheduled polls, storage, MQTT
// publishing and the HTTP API.
func SunwegCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, "stdout")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)
	ctx := c.Context

	var db *database.Database
	if cfg.DatabaseURL != "" {
		if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
			return err
		}
		db, err = database.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := publisher.RegisterPublisher("postgres", db); err != nil {
			return err
		}
	} else {
		logger.Warn("DATABASE_URL not set, production history will not be stored")
	}

	if cfg.MqttCfg.Host != "" {
		mqttSvc := mqtt.New(mqtt.NewClient(cfg.MqttCfg))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	return run(ctx, cfg, sunweg.New(cfg.SunwegCfg), make(chan error, 1000), logger, db)
}

// PlantsCommand prints every plant, with completed inverters, as JSON.
func PlantsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, "stderr")
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return printPlants(c.Context, sunweg.New(cfg.SunwegCfg), c.App.Writer)
}

// StatsCommand prints the daily production of one month as JSON.
func StatsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, "stderr")
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if c.IsSet("year") {
		year = c.Int("year")
	}
	if c.IsSet("month") {
		month = c.Int("month")
	}
	var inverterID *int
	if c.IsSet("inverter") {
		id := c.Int("inverter")
		inverterID = &id
	}
	return printStats(c.Context, sunweg.New(cfg.SunwegCfg), c.App.Writer, year, month, c.Int("plant"), inverterID)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("listen-addr") {
		cfg.ListenAddr = c.String("listen-addr")
	}
	if c.IsSet("poll-schedule") {
		cfg.PollSchedule = c.String("poll-schedule")
	}
	return cfg, nil
}

func newLogger(level, output string) (*zap.Logger, error) {
	var err error
	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{output}
	logCfg.ErrorOutputPaths = []string{output}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func run(ctx context.Context, cfg *config.Config, client SunwegClient, errorChan chan error, logger *zap.Logger, db *database.Database) error {
	eg, ctx := errgroup.WithContext(ctx)

	p := poller.New(client, nil, publisher.Registry{})
	if db != nil {
		p = poller.New(client, db, publisher.Registry{})
	}
	api := server.New(p, nil)
	if db != nil {
		api = server.New(p, db)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(p), collectors.NewGoCollector())

	eg.Go(func() error {
		return p.Run(ctx, cfg.PollSchedule, errorChan)
	})

	if db != nil {
		eg.Go(func() error {
			return cronDbCleanup(ctx, db, cfg.CleanupSchedule, errorChan)
		})
	}

	if cfg.ListenAddr != "" {
		srv := &http.Server{
			Handler:      api.Handler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
			Addr:         cfg.ListenAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		eg.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(contxt.NewContext(5 * time.Second))
		})
	}

	eg.Go(func() error {
		// handle any async errors from the schedulers
		for {
			select {
			case err := <-errorChan:
				switch {
				case errors.Is(err, errCleanup):
					logger.Error("cron error", zap.Error(err))
					return err
				case errors.Is(err, sunweg.ErrAuthentication):
					logger.Error("sunweg rejected the credentials", zap.Error(err))
					return err
				default:
					logger.Warn("poll failed, retrying on next schedule", zap.Error(err))
				}
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

type cleaner interface {
	Cleanup(ctx context.Context) error
}

func cronDbCleanup(ctx context.Context, db cleaner, schedule string, errChan chan<- error) error {
	if err := db.Cleanup(ctx); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := db.Cleanup(ctx); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			errChan <- errors.Join(errCleanup, err)
			return
		}
		zap.L().Info("database cleanup complete")
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func printPlants(ctx context.Context, client SunwegClient, w io.Writer) error {
	if _, err := client.Authenticate(ctx); err != nil {
		return err
	}
	plants, err := client.ListPlants(ctx)
	if err != nil {
		return err
	}
	for _, plant := range plants {
		for _, inv := range plant.Inverters {
			if inv.IsComplete() {
				continue
			}
			if err := client.CompleteInverter(ctx, inv); err != nil {
				return err
			}
		}
	}
	return writeJSON(w, plants)
}

func printStats(ctx context.Context, client SunwegClient, w io.Writer, year, month, plantID int, inverterID *int) error {
	if _, err := client.Authenticate(ctx); err != nil {
		return err
	}
	stats, err := client.MonthStatsProductionByID(ctx, year, month, plantID, inverterID)
	if err != nil {
		return err
	}
	return writeJSON(w, stats)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
