package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklist/internal/core/config"
	"github.com/hay-kot/worklist/internal/core/logging"
	"github.com/hay-kot/worklist/internal/core/todo"
	"github.com/hay-kot/worklist/internal/core/validate"
	"github.com/hay-kot/worklist/internal/data/stores"
	"github.com/hay-kot/worklist/internal/worklist"
	"github.com/hay-kot/worklist/pkg/iojson"
)

// ErrRejected is returned by commands whose update was refused. The reason
// has already been written to the error writer as JSON.
var ErrRejected = errors.New("todo update rejected")

// TodoCmd implements the worklist todo command group.
type TodoCmd struct {
	flags *Flags
	app   *worklist.App

	// show flags
	showJSON   bool
	showPretty bool

	// update flags
	updateStatus      string
	updateDescription string

	// batch flags
	batchInput iojson.FileReader[[]todo.Update]
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags, app *worklist.App) *TodoCmd {
	return &TodoCmd{flags: flags, app: app}
}

func (cmd *TodoCmd) todos() *worklist.TodoListStore {
	return cmd.app.Todos
}

// worker returns the --worker value, or "" to select the default worker.
func (cmd *TodoCmd) worker() (string, error) {
	worker := cmd.flags.Worker
	if worker == "" {
		return "", nil
	}
	if err := validate.WorkerName(worker); err != nil {
		return "", err
	}
	return worker, nil
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage a worker's todo list",
		Description: `Todo commands operate on the list of the worker selected with --worker,
or the configured default worker.

Examples:
  worklist todo init "Write tests" "Fix bug"        # replace the list
  worklist todo show                                # markdown view
  worklist todo update task-1 --status in_progress  # update one item
  echo '[{"id":"task-1","status":"completed"}]' | worklist todo batch`,
		Commands: []*cli.Command{
			cmd.initCmd(),
			cmd.showCmd(),
			cmd.updateCmd(),
			cmd.batchCmd(),
			cmd.workersCmd(),
			cmd.watchCmd(),
		},
	})

	return app
}

func (cmd *TodoCmd) initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Replace the todo list with new pending items",
		UsageText: "worklist todo init <description>...",
		Description: `Creates a new list with one pending item per argument. Items are
assigned ids task-1, task-2, ... in argument order. Any existing list
for the worker is replaced.`,
		Action: cmd.runInit,
	}
}

func (cmd *TodoCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the current todo list",
		UsageText: "worklist todo show [--json | --pretty]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the stored list as JSON",
				Destination: &cmd.showJSON,
			},
			&cli.BoolFlag{
				Name:        "pretty",
				Aliases:     []string{"p"},
				Usage:       "render markdown for the terminal",
				Destination: &cmd.showPretty,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *TodoCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a single item",
		UsageText: "worklist todo update <id> --status <status> [--description <desc>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "new status (pending, in_progress, completed)",
				Required:    true,
				Destination: &cmd.updateStatus,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "replace the item description",
				Destination: &cmd.updateDescription,
			},
		},
		Action: cmd.runUpdate,
	}
}

func (cmd *TodoCmd) batchCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Apply a JSON array of updates atomically",
		UsageText: "worklist todo batch [-f file]",
		Description: `Reads a JSON array of {"id", "status", "description"} objects from the
file given with -f, or from stdin. Updates are applied in order and either
all are saved or none are.`,
		Flags:  []cli.Flag{cmd.batchInput.Flag()},
		Action: cmd.runBatch,
	}
}

func (cmd *TodoCmd) workersCmd() *cli.Command {
	return &cli.Command{
		Name:      "workers",
		Usage:     "List workers that have a todo list",
		UsageText: "worklist todo workers",
		Action:    cmd.runWorkers,
	}
}

func (cmd *TodoCmd) watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Print the todo list again whenever it changes",
		UsageText: "worklist todo watch",
		Description: `Prints the current list, then reprints it each time another process
updates it. Requires the sqlite store. Stop with Ctrl-C.`,
		Action: cmd.runWatch,
	}
}

func (cmd *TodoCmd) runInit(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo init")

	worker, err := cmd.worker()
	if err != nil {
		return err
	}

	descriptions := c.Args().Slice()
	if len(descriptions) == 0 {
		return fmt.Errorf("usage: worklist todo init <description>...")
	}

	list, err := cmd.todos().Initialize(ctx, worker, descriptions)
	if err != nil {
		return fmt.Errorf("initialize todo list: %w", err)
	}

	_, err = fmt.Fprint(c.Root().Writer, todo.Format(&list))
	return err
}

func (cmd *TodoCmd) runShow(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo show")

	worker, err := cmd.worker()
	if err != nil {
		return err
	}

	if cmd.showJSON {
		list, err := cmd.todos().GetList(ctx, worker)
		if err != nil {
			return fmt.Errorf("get todo list: %w", err)
		}
		return iojson.Write(c.Root().Writer, list)
	}

	out, err := cmd.todos().CurrentFormatted(ctx, worker)
	if err != nil {
		return fmt.Errorf("get todo list: %w", err)
	}

	w := c.Root().Writer
	if cmd.showPretty && out != "" && isTerminal(w) {
		rendered, err := renderMarkdown(out, terminalWidth(w))
		if err != nil {
			log.Debug().Err(err).Msg("todo: render markdown")
		} else {
			out = rendered
		}
	}

	_, err = fmt.Fprint(w, out)
	return err
}

func (cmd *TodoCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo update")

	worker, err := cmd.worker()
	if err != nil {
		return err
	}

	if c.NArg() < 1 {
		return fmt.Errorf("usage: worklist todo update <id> --status <status>")
	}

	var description *string
	if c.IsSet("description") {
		description = &cmd.updateDescription
	}

	res, err := cmd.todos().UpdateItem(ctx, worker, c.Args().Get(0), todo.Status(cmd.updateStatus), description)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}

	return cmd.writeResult(c, res)
}

func (cmd *TodoCmd) runBatch(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo batch")

	worker, err := cmd.worker()
	if err != nil {
		return err
	}

	updates, err := cmd.batchInput.Read()
	if err != nil {
		return err
	}

	res, err := cmd.todos().UpdateItems(ctx, worker, updates)
	if err != nil {
		return fmt.Errorf("update todos: %w", err)
	}

	return cmd.writeResult(c, res)
}

func (cmd *TodoCmd) runWorkers(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo workers")
	workers, err := cmd.app.ListWorkers(ctx)
	if err != nil {
		return fmt.Errorf("list workers: %w", err)
	}

	for _, w := range workers {
		if _, err := fmt.Fprintln(c.Root().Writer, w); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *TodoCmd) writeResult(c *cli.Command, res todo.Result) error {
	switch r := res.(type) {
	case todo.Updated:
		_, err := fmt.Fprint(c.Root().Writer, todo.Format(&r.List))
		return err
	case todo.Rejected:
		data := map[string]any{}
		if r.Current != nil {
			data["current"] = r.Current
		}
		if err := iojson.WriteError(errWriter(c), r.Reason, data); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrRejected, r.Reason)
	default:
		return fmt.Errorf("unexpected result %T", res)
	}
}

func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func (cmd *TodoCmd) runWatch(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo watch")

	worker, err := cmd.worker()
	if err != nil {
		return err
	}

	cfg := cmd.app.Config
	if cfg == nil || cfg.Store != config.StoreSQLite {
		return fmt.Errorf("todo watch requires the %s store", config.StoreSQLite)
	}

	watcher, err := stores.NewDBWatcher(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("watch database: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w := c.Root().Writer
	return cmd.todos().Follow(ctx, worker, watcher.Changes(), func(out string) error {
		if out == "" {
			out = "(no todo list)\n"
		}
		_, err := fmt.Fprint(w, out+"\n")
		return err
	})
}
