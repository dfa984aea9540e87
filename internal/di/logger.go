package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/internal/logging/console"
	"github.com/goliatone/go-publish/internal/logging/gologger"
)

// configureLogger builds the logger provider named in config unless one was
// supplied through WithLoggerProvider.
func (c *Container) configureLogger() error {
	if c.loggerProvider == nil {
		cfg := c.Config.Logging
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case "", "console":
			level := console.ParseLevel(cfg.Level)
			c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     cfg.Level,
				Format:    cfg.Format,
				AddSource: cfg.AddSource,
				Focus:     cfg.Focus,
			})
			if err != nil {
				return fmt.Errorf("di: configure go-logger: %w", err)
			}
			c.loggerProvider = provider
		case "none":
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, logging.RootModule)
	return nil
}
