package database

import (
	"io/fs"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return true
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

type MigrationConfig struct {
	// Version pins the target version; 0 migrates to the latest.
	Version uint
	// Force marks the database as being at this version before migrating.
	Force int
	// AutoRollback cleans a dirty version back to the previous one when a migration fails.
	AutoRollback bool
	// Table holds migration bookkeeping.
	Table string
}

type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
	source fs.FS
}

// NewMigrationService runs the *.sql files found at the root of source.
func NewMigrationService(logger ectologger.Logger, config *MigrationConfig, source fs.FS) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
		source: source,
	}
}

func (ms *MigrationService) Migrate(db DB) error {
	src, err := iofs.New(ms.source, ".")
	if err != nil {
		return errors.Wrap(err, "failed to open migration source")
	}

	table := ms.config.Table
	if table == "" {
		table = "schema_migrations"
	}
	driver, err := sqlite.WithInstance(db.SQL(), &sqlite.Config{MigrationsTable: table})
	if err != nil {
		return errors.Wrap(err, "failed to create sqlite migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return err
	}
	m.Log = MigrationLogger{Logger: ms.logger}

	return ms.run(m)
}

func (ms *MigrationService) run(m *migrate.Migrate) error {
	if ms.config.Force != 0 {
		if err := m.Force(ms.config.Force); err != nil {
			ms.logger.WithError(err).Errorf("Failed to force database to version %d", ms.config.Force)
			return err
		}
	}

	previous, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		ms.logger.WithError(err).Error("Failed to get current migration version")
	}

	start := time.Now()
	if ms.config.Version != 0 {
		err = m.Migrate(ms.config.Version)
	} else {
		err = m.Up()
	}
	ms.logger.Infof("Database migrations completed in %v", time.Since(start))

	return ms.handleMigrationError(m, err, previous)
}

func (ms *MigrationService) handleMigrationError(m *migrate.Migrate, err error, previous uint) error {
	if err == nil {
		ms.logger.Info("Successfully applied migrations")
		return nil
	}
	if errors.Is(err, migrate.ErrNoChange) {
		ms.logger.Info("No new migrations to apply")
		return nil
	}

	ms.logger.WithError(err).Errorf("Migration failed with error: %v", err)

	version, dirty, versionErr := m.Version()
	if versionErr != nil {
		return err
	}
	if dirty && ms.config.AutoRollback {
		target := int(previous)
		if target == 0 && version > 0 {
			target = int(version) - 1
		}
		ms.logger.Warnf("Database is dirty at version %d. Reverting to version %d", version, target)
		if forceErr := m.Force(target); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", target)
			return forceErr
		}
	}

	// the original error is returned even after a rollback so startup aborts
	return err
}
