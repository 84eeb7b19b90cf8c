package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var files embed.FS

// Up applies all pending migrations. An up-to-date schema is not an error.
func Up(db *sql.DB, log zerolog.Logger) error {
	start := time.Now()
	log = log.With().Str("component", "database").Logger()
	log.Info().Str("event", "db_migration_start").Msg("applying migrations")

	src, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	drv, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	m.Log = stepLogger{log: log}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().
				Str("event", "db_migration_skip").
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("schema already up to date")
			return nil
		}
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("migration failed")
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info().
		Str("event", "db_migration_success").
		Uint("version", version).
		Bool("dirty", dirty).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("migrations applied")
	return nil
}

// stepLogger adapts zerolog to migrate.Logger so every applied step is logged.
type stepLogger struct {
	log zerolog.Logger
}

func (l stepLogger) Printf(format string, v ...any) {
	l.log.Info().Str("event", "db_migration_step").Msgf(format, v...)
}

func (l stepLogger) Verbose() bool {
	return false
}
