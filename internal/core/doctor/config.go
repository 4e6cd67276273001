package doctor

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/worklist/internal/core/config"
)

// ConfigCheck runs deep validation of the loaded configuration.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new config check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.cfg == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "config",
			Status: StatusFail,
			Detail: "not loaded",
		})
		return result
	}

	err := c.cfg.ValidateDeep(c.configPath)
	if err == nil {
		result.Items = append(result.Items,
			CheckItem{Label: "config", Status: StatusPass, Detail: c.configPath},
			CheckItem{Label: "store", Status: StatusPass, Detail: string(c.cfg.Store)},
			CheckItem{Label: "default worker", Status: StatusPass, Detail: c.cfg.DefaultWorker},
		)
		return result
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		result.Items = append(result.Items, CheckItem{
			Label:  "config",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	for _, fe := range fieldErrs {
		result.Items = append(result.Items, CheckItem{
			Label:  fe.Field,
			Status: StatusFail,
			Detail: fe.Err.Error(),
		})
	}

	return result
}
