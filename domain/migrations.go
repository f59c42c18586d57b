package domain

import (
	"embed"
	"path"
)

//go:embed migrations
var Migrations embed.FS

// MigrationsDir returns the directory in Migrations that holds the schema for driver.
func MigrationsDir(driver string) string {
	return path.Join("migrations", driver)
}
