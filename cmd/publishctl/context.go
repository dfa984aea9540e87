package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-publish"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *publish.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*publish.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := publish.LoadConfig(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withModule opens the engine for the duration of fn and releases storage
// afterwards.
func (c *commandContext) withModule(fn func(*publish.Module) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	module, err := publish.New(*cfg)
	if err != nil {
		return fmt.Errorf("open publish module: %w", err)
	}
	defer module.Close()
	return fn(module)
}
