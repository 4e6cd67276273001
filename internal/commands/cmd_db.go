package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklist/internal/core/config"
	"github.com/hay-kot/worklist/internal/data/db"
	"github.com/hay-kot/worklist/internal/worklist"
)

// DBCmd implements database maintenance commands.
type DBCmd struct {
	flags *Flags
	app   *worklist.App

	rollbackSteps int
}

func NewDBCmd(flags *Flags, app *worklist.App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Database maintenance commands",
		Commands: []*cli.Command{
			{
				Name:      "rollback",
				Usage:     "Revert the most recent schema migrations",
				UsageText: "worklist db rollback [--steps n]",
				Description: `Reverts the last n applied migrations in reverse order. Reverting the
metadata table migration deletes every stored todo list. Requires the
sqlite store. Migrations are reapplied on the next run.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Aliases:     []string{"n"},
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.rollbackSteps,
					},
				},
				Action: cmd.runRollback,
			},
		},
	})

	return app
}

func (cmd *DBCmd) runRollback(ctx context.Context, c *cli.Command) error {
	if cmd.app.DB == nil {
		return fmt.Errorf("db rollback requires the %s store", config.StoreSQLite)
	}

	if err := db.MigrateDown(ctx, cmd.app.DB.Conn(), cmd.rollbackSteps); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	_, err := fmt.Fprintf(c.Root().Writer, "reverted %d migration(s)\n", cmd.rollbackSteps)
	return err
}
