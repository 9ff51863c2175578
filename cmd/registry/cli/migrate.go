package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	"github.com/mcit/lawregistry/migrations"
)

// migrateURL rewrites a postgres DSN to the scheme of the pgx/v5 driver.
func migrateURL(dsn string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
		}
	}
	return "", fmt.Errorf("migrate: unsupported dsn scheme in %q", dsn)
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	url, err := migrateURL(dsn)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migrate: load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("migrate: connect: %w", err)
	}
	return m, nil
}

// NewMigrateCommand builds `registry migrate` with up, down and version
// subcommands. dsn is resolved lazily from configuration.
func NewMigrateCommand(dsn func() (string, error)) *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	run := func(apply func(*migrate.Migrate) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			d, err := dsn()
			if err != nil {
				return err
			}
			m, err := newMigrator(d)
			if err != nil {
				return err
			}
			defer func() { _, _ = m.Close() }()
			if err := apply(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			version, dirty, err := m.Version()
			if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
				return err
			}
			printf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		}
	}
	root.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(func(m *migrate.Migrate) error { return m.Up() })},
		&cobra.Command{Use: "down", Short: "Revert all migrations", Args: cobra.NoArgs, RunE: run(func(m *migrate.Migrate) error { return m.Down() })},
		&cobra.Command{Use: "version", Short: "Print the current schema version", Args: cobra.NoArgs, RunE: run(func(*migrate.Migrate) error { return nil })},
	)
	return root
}
