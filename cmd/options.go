// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/nlint/prims"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (LintCommand, PrimsCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	registry *prims.Registry
	logger   *logrus.Logger
}

func newCmdConfig(opts ...Option) *cmdConfig {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithRegistry injects a primitive registry. Embedders use it to check
// models against primitives of their own extensions.
func WithRegistry(reg *prims.Registry) Option {
	return func(c *cmdConfig) { c.registry = reg }
}

// WithLogger replaces the logger built from the log-level setting.
func WithLogger(l *logrus.Logger) Option {
	return func(c *cmdConfig) { c.logger = l }
}

// resolveRegistry returns the injected registry, or the bundled catalogs
// plus those named by extensions.catalogs.
func (c *cmdConfig) resolveRegistry() (*prims.Registry, error) {
	if c.registry != nil {
		return c.registry, nil
	}
	reg, err := prims.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}
	for _, path := range viper.GetStringSlice("extensions.catalogs") {
		if err := loadCatalog(reg, path); err != nil {
			return nil, err
		}
	}
	c.registry = reg
	return reg, nil
}

func loadCatalog(reg *prims.Registry, path string) error {
	f, err := os.Open(path) //nolint:gosec // catalogs are named by the user's config
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file
	if err := reg.LoadCatalog(f); err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	return nil
}

func (c *cmdConfig) resolveLogger() *logrus.Logger {
	if c.logger == nil {
		c.logger = newLogger()
	}
	return c.logger
}
