package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"landscaper/internal/config"
	"landscaper/internal/services"
)

type commandContext struct {
	configFlag    *string
	logFormatFlag *string
	verboseFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logFormatFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logFormatFlag: logFormatFlag,
		verboseFlag:   verboseFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Logging.Level = "debug"
		}
		if c.logFormatFlag != nil {
			switch format := strings.ToLower(strings.TrimSpace(*c.logFormatFlag)); format {
			case "":
			case "console", "json":
				cfg.Logging.Format = format
			default:
				c.configErr = services.Wrap(services.ErrConfiguration, "cli", "log-format",
					fmt.Sprintf("unsupported value %q (use console or json)", format), nil)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
