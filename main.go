package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklist/internal/commands"
	"github.com/hay-kot/worklist/internal/core/config"
	"github.com/hay-kot/worklist/internal/core/eventbus"
	"github.com/hay-kot/worklist/internal/core/logging"
	"github.com/hay-kot/worklist/internal/core/metadata"
	"github.com/hay-kot/worklist/internal/data/db"
	"github.com/hay-kot/worklist/internal/data/stores"
	"github.com/hay-kot/worklist/internal/worklist"
	"github.com/hay-kot/worklist/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() falls back
	// to runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openDatabase opens the SQLite database, moving a corrupted file aside and
// retrying once.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database corrupted, backing up and recreating")
	if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}

	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		app       = &worklist.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	root := commands.NewRoot(flags, app)
	root.Version = build()
	root.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger.Hook(logging.ContextHook{})
		logCloser = closer

		cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
		if err != nil {
			return ctx, fmt.Errorf("load config: %w", err)
		}
		flags.Config = cfg

		var (
			store   metadata.Store
			workers worklist.WorkerLister
		)

		switch cfg.Store {
		case config.StoreMemory:
			mem := stores.NewMemoryStore()
			store, workers = mem, mem
		default:
			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}
			sqlStore := stores.NewMetadataStore(database)
			store, workers = sqlStore, sqlStore
		}

		bus := eventbus.New(64)
		eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

		busCtx, cancel := context.WithCancel(context.Background())
		busCancel = cancel
		go bus.Start(busCtx)

		todos := worklist.New(store, cfg.DefaultWorker, log.Logger, worklist.WithEventBus(bus))

		// Populate the pre-allocated App struct (commands already hold a pointer to it)
		*app = *worklist.NewApp(cfg, todos, workers, bus)
		app.DB = database

		return ctx, nil
	}
	root.After = func(ctx context.Context, c *cli.Command) error {
		if busCancel != nil {
			busCancel()
		}

		if database != nil {
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}
		}

		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
