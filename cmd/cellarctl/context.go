package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"wine-cellar/internal/app"
	"wine-cellar/internal/config"
	"wine-cellar/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type commandContext struct {
	envFileFlag *string

	configOnce sync.Once
	config     *config.Config
	logger     *zap.Logger
	configErr  error
}

func newCommandContext(envFileFlag *string) *commandContext {
	return &commandContext{envFileFlag: envFileFlag}
}

// ensureConfig exports the env file into the process, then reads the
// configuration through viper.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := ""
		if c.envFileFlag != nil {
			path = strings.TrimSpace(*c.envFileFlag)
		}

		if path != "" {
			if err := godotenv.Load(path); err != nil {
				c.configErr = fmt.Errorf("load env file %s: %w", path, err)
				return
			}
		} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = fmt.Errorf("load .env: %w", err)
			return
		}

		cfg := config.Load()
		log, err := logger.New(cfg.Server.Env)
		if err != nil {
			c.configErr = fmt.Errorf("initialize logger: %w", err)
			return
		}
		c.config = cfg
		c.logger = log
	})
	return c.config, c.configErr
}

// withApp opens the store and the pipeline for the duration of fn.
func (c *commandContext) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, c.logger)
	if err != nil {
		return fmt.Errorf("open application: %w", err)
	}
	defer a.Close()
	defer func() { _ = c.logger.Sync() }()

	return fn(a)
}
