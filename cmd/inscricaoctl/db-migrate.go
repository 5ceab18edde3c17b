package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/inscricao/pkg/config"
)

const migrationsTable = "inscricao_schema_migrations"

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations on every configured
database (reference, users and audit). When several of them share a URL the
migrations run once.

Example:
  inscricaoctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Println("Failed to load configuration:", err)
			os.Exit(1)
		}
		if err := runMigrations(cfg); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1) on
every configured database.

Example:
  inscricaoctl db down      # Rollback 1 migration
  inscricaoctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Println("error: steps must be a positive integer")
				os.Exit(1)
			}
			steps = n
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("Failed to load configuration:", err)
			os.Exit(1)
		}
		if err := runMigrationsDown(cfg, steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current migration version of every configured database.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Println("Failed to load configuration:", err)
			os.Exit(1)
		}
		if err := showMigrationStatus(cfg); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// migrationTarget is one database the migrations are applied to.
type migrationTarget struct {
	Name string
	URL  string
}

// migrationTargets lists the configured databases, each URL once. The name
// of a shared URL joins the roles it serves, e.g. "reference+users".
func migrationTargets(cfg *config.Config) []migrationTarget {
	var targets []migrationTarget
	add := func(name, url string) {
		if url == "" {
			return
		}
		for i := range targets {
			if targets[i].URL == url {
				targets[i].Name += "+" + name
				return
			}
		}
		targets = append(targets, migrationTarget{Name: name, URL: url})
	}
	add("reference", cfg.ReferenceURL())
	add("users", cfg.UsersURL())
	if cfg.AuditEnabled {
		add("audit", cfg.AuditDatabaseURL)
	}
	return targets
}

// withMigrationsTable points golang-migrate at its own bookkeeping table.
func withMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + migrationsTable
	}
	return dbURL + "?x-migrations-table=" + migrationsTable
}

func requireTargets(cfg *config.Config) ([]migrationTarget, error) {
	targets := migrationTargets(cfg)
	if len(targets) == 0 {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return targets, nil
}

func runMigrations(cfg *config.Config) error {
	targets, err := requireTargets(cfg)
	if err != nil {
		return err
	}

	for _, target := range targets {
		m, err := createMigrateInstance(withMigrationsTable(target.URL))
		if err != nil {
			return fmt.Errorf("%s: failed to create migrate instance: %w", target.Name, err)
		}

		version, dirty, _ := m.Version()
		fmt.Printf("[%s] Current version: %d (dirty: %v)\n", target.Name, version, dirty)

		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Printf("[%s] No migrations to run - database is up to date\n", target.Name)
			_, _ = m.Close()
			continue
		}
		if err != nil {
			_, _ = m.Close()
			return fmt.Errorf("%s: migration failed: %w", target.Name, err)
		}

		newVersion, _, _ := m.Version()
		fmt.Printf("[%s] Migrated to version: %d\n", target.Name, newVersion)
		_, _ = m.Close()
	}

	fmt.Println("Migrations complete")
	return nil
}

func runMigrationsDown(cfg *config.Config, steps int) error {
	targets, err := requireTargets(cfg)
	if err != nil {
		return err
	}

	for _, target := range targets {
		m, err := createMigrateInstance(withMigrationsTable(target.URL))
		if err != nil {
			return fmt.Errorf("%s: failed to create migrate instance: %w", target.Name, err)
		}

		fmt.Printf("[%s] Rolling back %d migration(s)...\n", target.Name, steps)
		if err := m.Steps(-steps); err != nil {
			_, _ = m.Close()
			return fmt.Errorf("%s: rollback failed: %w", target.Name, err)
		}

		version, _, _ := m.Version()
		fmt.Printf("[%s] Rolled back to version: %d\n", target.Name, version)
		_, _ = m.Close()
	}
	return nil
}

func showMigrationStatus(cfg *config.Config) error {
	targets, err := requireTargets(cfg)
	if err != nil {
		return err
	}

	for _, target := range targets {
		m, err := createMigrateInstance(withMigrationsTable(target.URL))
		if err != nil {
			return fmt.Errorf("%s: failed to create migrate instance: %w", target.Name, err)
		}

		version, dirty, err := m.Version()
		_, _ = m.Close()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Printf("[%s] No migrations have been applied yet\n", target.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", target.Name, err)
		}

		fmt.Printf("[%s] Current version: %d\n", target.Name, version)
		if dirty {
			fmt.Printf("[%s] Warning: Database is in a dirty state\n", target.Name)
		}
	}
	return nil
}
