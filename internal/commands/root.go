package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklist/internal/worklist"
)

const (
	rootUsage       = "Keep a todo list per worker"
	rootUsageText   = "worklist [global options] command [command options]"
	rootDescription = `Worklist stores one todo list per worker and enforces that at most one
item is in progress at a time.

Run 'worklist todo init' to create a list and 'worklist todo show' to print it.`
)

// NewRoot builds the root command with global flags bound to flags and every
// subcommand registered against app. Callers attach Before/After hooks.
func NewRoot(flags *Flags, app *worklist.App) *cli.Command {
	root := &cli.Command{
		Name:        "worklist",
		Usage:       rootUsage,
		UsageText:   rootUsageText,
		Description: rootDescription,
		Flags:       globalFlags(flags),
	}

	root = NewTodoCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewDBCmd(flags, app).Register(root)

	return root
}

func globalFlags(flags *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("WORKLIST_LOG_LEVEL"),
			Value:       "warn",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (logs to stderr when unset)",
			Sources:     cli.EnvVars("WORKLIST_LOG_FILE"),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("WORKLIST_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("WORKLIST_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &flags.DataDir,
		},
		&cli.StringFlag{
			Name:        "worker",
			Aliases:     []string{"w"},
			Usage:       "worker whose list to operate on (defaults to config default_worker)",
			Sources:     cli.EnvVars("WORKLIST_WORKER"),
			Destination: &flags.Worker,
		},
	}
}
