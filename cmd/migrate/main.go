//go:build migrate

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/migrations"
)

func main() {
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "postgres")
	var dbURL string
	switch driver {
	case "sqlite":
		dbURL = "sqlite://" + getEnv("SQLITE_PATH", "referrals.db")
	default:
		driver = "postgres"
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			host := getEnv("DB_HOST", "localhost")
			port := getEnv("DB_PORT", "5432")
			user := getEnv("DB_USER", "referrals")
			password := getEnv("DB_PASSWORD", "referrals")
			name := getEnv("DB_NAME", "referrals")
			sslmode := getEnv("DB_SSLMODE", "disable")
			dsn = "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslmode
		}
		// The pgx/v5 driver registers the pgx5 scheme.
		dbURL = "pgx5://" + strings.TrimPrefix(strings.TrimPrefix(dsn, "postgres://"), "postgresql://")
	}

	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		log.Fatalf("Failed to load migrations: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <up|down|version|force>")
	}

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations applied successfully")

	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to rollback migration: %v", err)
		}
		log.Println("Migration rolled back successfully")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Failed to get version: %v", err)
		}
		log.Printf("Version: %d, Dirty: %v", version, dirty)

	case "force":
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate force <version>")
		}
		var version int
		if _, err := fmt.Sscanf(os.Args[2], "%d", &version); err != nil {
			log.Fatalf("Invalid version: %v", err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		log.Printf("Forced version to %d", version)

	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
