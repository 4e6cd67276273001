package worklist

import (
	"context"

	"github.com/hay-kot/worklist/internal/core/config"
	"github.com/hay-kot/worklist/internal/core/doctor"
	"github.com/hay-kot/worklist/internal/core/eventbus"
	"github.com/hay-kot/worklist/internal/data/db"
)

// WorkerLister reports which workers hold a document under a key. Both
// metadata store backends implement it.
type WorkerLister interface {
	Workers(ctx context.Context, key string) ([]string, error)
}

// App bundles the services the CLI commands operate on.
type App struct {
	Config  *config.Config
	Todos   *TodoListStore
	Workers WorkerLister
	Bus     *eventbus.EventBus

	// DB is set when the sqlite store is in use.
	DB *db.DB
}

// NewApp creates an App.
func NewApp(cfg *config.Config, todos *TodoListStore, workers WorkerLister, bus *eventbus.EventBus) *App {
	return &App{
		Config:  cfg,
		Todos:   todos,
		Workers: workers,
		Bus:     bus,
	}
}

// ListWorkers returns every worker that currently has a todo list.
func (a *App) ListWorkers(ctx context.Context) ([]string, error) {
	if a.Workers == nil {
		return nil, nil
	}
	return a.Workers.Workers(ctx, TodoListKey)
}

// DoctorChecks returns the health checks for this installation.
func (a *App) DoctorChecks(configPath string) []doctor.Check {
	return []doctor.Check{
		doctor.NewConfigCheck(a.Config, configPath),
		doctor.NewListsCheck(a, a.Todos),
	}
}
