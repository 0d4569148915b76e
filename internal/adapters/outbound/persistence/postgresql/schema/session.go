package schema

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// migrationSession is one open migrate runner plus the source driver it reads
// revisions from.
type migrationSession interface {
	Version() (version uint, dirty bool, err error)
	First() (uint, error)
	Next(version uint) (uint, error)
	Up() error
	Close() error
}

type migrateSession struct {
	runner *migrate.Migrate
	source source.Driver
}

func (s *migrateSession) Version() (uint, bool, error) {
	return s.runner.Version()
}

func (s *migrateSession) First() (uint, error) {
	return s.source.First()
}

func (s *migrateSession) Next(version uint) (uint, error) {
	return s.source.Next(version)
}

func (s *migrateSession) Up() error {
	return s.runner.Up()
}

// Close also closes the source driver: migrate owns it once handed over.
func (s *migrateSession) Close() error {
	sourceErr, databaseErr := s.runner.Close()
	return stderrors.Join(sourceErr, databaseErr)
}

type sessionSetupError struct {
	code string
	err  error
}

func (e *sessionSetupError) Error() string {
	return e.err.Error()
}

func (e *sessionSetupError) Unwrap() error {
	return e.err
}

func openMigrateSession(databaseURL string, migrationsPath string, logger *zap.Logger) (migrationSession, error) {
	sourceName, sourceDriver, err := openSource(migrationsPath)
	if err != nil {
		return nil, err
	}

	runner, err := migrate.NewWithSourceInstance(sourceName, sourceDriver, databaseURL)
	if err != nil {
		_ = sourceDriver.Close()
		return nil, &sessionSetupError{code: "DB_MIGRATION_SETUP_FAILED", err: err}
	}
	runner.Log = newMigrateLogger(logger)

	return &migrateSession{runner: runner, source: sourceDriver}, nil
}

func openSource(migrationsPath string) (string, source.Driver, error) {
	if migrationsPath == "" {
		driver, err := iofs.New(embeddedMigrations, embeddedMigrationsDir)
		if err != nil {
			return "", nil, &sessionSetupError{code: "DB_MIGRATION_SOURCE_OPEN_FAILED", err: err}
		}
		return "iofs", driver, nil
	}

	migrationsAbsPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return "", nil, &sessionSetupError{code: "DB_MIGRATION_PATH_RESOLVE_FAILED", err: err}
	}

	driver, err := source.Open("file://" + filepath.ToSlash(migrationsAbsPath))
	if err != nil {
		return "", nil, &sessionSetupError{code: "DB_MIGRATION_SOURCE_OPEN_FAILED", err: err}
	}
	return "file", driver, nil
}

type migrateLogger struct {
	logger *zap.Logger
}

func newMigrateLogger(logger *zap.Logger) migrate.Logger {
	return migrateLogger{logger: logger.Named("migrate")}
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Sugar().Debugf(strings.TrimRight(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zapcore.DebugLevel)
}
