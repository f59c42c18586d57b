package main

import (
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/tracing"
)

const (
	backendDatabase = "database"
	backendFile     = "file"
)

// Config is the marketplace CLI configuration, read from config/${ENVIRONMENT}.yaml.
type Config struct {
	Service ServiceConfig `yaml:"service"`

	Logger  logger.Config  `yaml:"logger"`
	Tracing tracing.Config `yaml:"tracing"`

	Storage  StorageConfig   `yaml:"storage"`
	Database database.Config `yaml:"database"`

	Seed SeedConfig `yaml:"seed"`
}

type ServiceConfig struct {
	Name    string `yaml:"name"    default:"marketplace"`
	Version string `yaml:"version" default:"dev"`
}

// StorageConfig selects where records are kept.
type StorageConfig struct {
	// Backend is "database" for the relational repositories or "file" for the
	// file repositories.
	Backend string `yaml:"backend" default:"database" validate:"oneof=database file"`
	// Dir holds the files of the file backend.
	Dir string `yaml:"dir" default:"./data"`
}

// SeedConfig points at the YAML files staged on start.
type SeedConfig struct {
	// ActorID is recorded as the creator of seeded records.
	ActorID       string `yaml:"actor_id"       validate:"omitempty,uuid"`
	CountriesFile string `yaml:"countries_file" default:"./config/seed/countries.yaml"`
	BrandsFile    string `yaml:"brands_file"    default:"./config/seed/brands.yaml"`
}
