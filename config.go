package estore

import (
	"time"

	"github.com/estore/estore/logger"
	"github.com/estore/estore/schema"
)

// PopulateConfig recognizes the configuration keys for seeding the
// in-memory store: generate the derived relationship tables eagerly, seed named
// tables with rows up front, and/or hand the store an arbitrary populate
// source the caller interprets itself.
type PopulateConfig struct {
	GenerateTables bool
	Tables         map[string][]map[string]any
	Source         any
}

// Config configures a Store the way gorm.Config configures a
// *DB: a NamingStrategy, a Logger, a NowFunc, and the store-specific
// Populate settings.
type Config struct {
	NamingStrategy schema.Namer
	Logger         logger.Interface
	NowFunc        func() time.Time
	Populate       PopulateConfig
}

// ConfigOption is the functional-option form of Config, mirroring the
// teacher's ConfigOption.
type ConfigOption func(c *Config)

func WithNamingStrategy(namer schema.Namer) ConfigOption {
	return func(c *Config) { c.NamingStrategy = namer }
}

func WithLogger(l logger.Interface) ConfigOption {
	return func(c *Config) { c.Logger = l }
}

func WithNowFunc(fn func() time.Time) ConfigOption {
	return func(c *Config) { c.NowFunc = fn }
}

func WithPopulate(p PopulateConfig) ConfigOption {
	return func(c *Config) { c.Populate = p }
}

func defaultConfig() *Config {
	return &Config{
		NamingStrategy: schema.NamingStrategy{},
		Logger:         logger.DefaultLogger,
		NowFunc:        func() time.Time { return time.Now().Local() },
	}
}
