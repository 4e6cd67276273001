package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklist/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "worklist config validate [options]",
				Description: "Validates the configuration file, database settings, and data directory.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("config not loaded")
	}

	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
	issues := toIssues(err)

	if cmd.format == "json" {
		out := struct {
			Valid  bool              `json:"valid"`
			Errors []validationIssue `json:"errors,omitempty"`
		}{
			Valid:  err == nil,
			Errors: issues,
		}
		if werr := iojson.Write(c.Root().Writer, out); werr != nil {
			return werr
		}
	} else {
		w := c.Root().Writer
		if err == nil {
			_, _ = fmt.Fprintln(w, "config is valid")
		}
		for _, is := range issues {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", is.Field, is.Message)
		}
	}

	if err != nil {
		return fmt.Errorf("config has %d error(s)", len(issues))
	}
	return nil
}

func toIssues(err error) []validationIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		issues := make([]validationIssue, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			issues = append(issues, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
		}
		return issues
	}

	return []validationIssue{{Field: "config", Message: err.Error()}}
}
