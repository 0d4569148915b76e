package schema

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"startgate/internal/application/dto"
	portsout "startgate/internal/application/ports/out"
	apperrors "startgate/internal/shared_kernel/errors"
)

type Gateway struct {
	databaseTarget string
	migrationsPath string
	openSession    func() (migrationSession, error)
	logger         *zap.Logger
}

var _ portsout.SchemaMigrationGateway = (*Gateway)(nil)

// NewGateway reads revisions from migrationsPath, or from the embedded
// baseline set when migrationsPath is empty.
func NewGateway(
	databaseURL string,
	databaseTarget string,
	migrationsPath string,
	logger *zap.Logger,
) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		databaseTarget: databaseTarget,
		migrationsPath: migrationsPath,
		openSession: func() (migrationSession, error) {
			return openMigrateSession(databaseURL, migrationsPath, logger)
		},
		logger: logger,
	}
}

func (g *Gateway) PlanMigrations(ctx context.Context) (dto.MigrationPlan, *apperrors.AppError) {
	session, appErr := g.open(ctx)
	if appErr != nil {
		return dto.MigrationPlan{}, appErr
	}
	defer g.close(session)

	return g.plan(session)
}

func (g *Gateway) ApplyMigrations(ctx context.Context) (dto.ApplyMigrationsOutput, *apperrors.AppError) {
	session, appErr := g.open(ctx)
	if appErr != nil {
		return dto.ApplyMigrationsOutput{}, appErr
	}
	defer g.close(session)

	err := session.Up()
	if err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		g.logger.Error("database migrations failed",
			zap.String("database_target", g.databaseTarget),
			zap.Error(err),
		)
		return dto.ApplyMigrationsOutput{}, apperrors.NewInternal(
			"DB_MIGRATION_APPLY_FAILED",
			"failed to apply migrations",
			g.details(),
		).WithCause(err)
	}

	version, _, appErr := g.version(session)
	if appErr != nil {
		return dto.ApplyMigrationsOutput{}, appErr
	}

	return dto.ApplyMigrationsOutput{
		VersionAfter: version.value,
		NoChange:     stderrors.Is(err, migrate.ErrNoChange),
	}, nil
}

func (g *Gateway) plan(session migrationSession) (dto.MigrationPlan, *apperrors.AppError) {
	version, dirty, appErr := g.version(session)
	if appErr != nil {
		return dto.MigrationPlan{}, appErr
	}

	plan := dto.MigrationPlan{
		CurrentVersion: version.value,
		HasVersion:     version.present,
		Dirty:          dirty,
		Pending:        []uint{},
	}

	versions, err := sourceVersions(session)
	if err != nil {
		return dto.MigrationPlan{}, apperrors.NewInternal(
			"DB_MIGRATION_PLAN_FAILED",
			"failed to list pending migrations",
			g.details(),
		).WithCause(err)
	}

	known := !version.present
	for _, candidate := range versions {
		if version.present && candidate == version.value {
			known = true
		}
		if !version.present || candidate > version.value {
			plan.Pending = append(plan.Pending, candidate)
		}
	}

	// A ledger ahead of the shipped revisions would make Up fail with no
	// migration found for the current version.
	if !known {
		return dto.MigrationPlan{}, apperrors.NewInternal(
			"DB_MIGRATION_VERSION_UNKNOWN",
			"ledger version is not present in the migration source",
			g.details(),
		).WithDetail("current_version", version.value)
	}

	return plan, nil
}

// sourceVersions lists every revision in the source in ascending order.
func sourceVersions(session migrationSession) ([]uint, error) {
	versions := []uint{}

	next, err := session.First()
	for err == nil {
		versions = append(versions, next)
		next, err = session.Next(next)
	}
	if !stderrors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return versions, nil
}

type ledgerVersion struct {
	value   uint
	present bool
}

func (g *Gateway) version(session migrationSession) (ledgerVersion, bool, *apperrors.AppError) {
	version, dirty, err := session.Version()
	if stderrors.Is(err, migrate.ErrNilVersion) {
		return ledgerVersion{}, false, nil
	}
	if err != nil {
		return ledgerVersion{}, false, apperrors.NewInternal(
			"DB_MIGRATION_VERSION_READ_FAILED",
			"failed to read migration ledger version",
			g.details(),
		).WithCause(err)
	}

	return ledgerVersion{value: version, present: true}, dirty, nil
}

func (g *Gateway) open(ctx context.Context) (migrationSession, *apperrors.AppError) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewInternal(
			"DB_MIGRATION_CONTEXT_CANCELED",
			"migration context canceled",
			g.details(),
		).WithCause(err)
	}

	session, err := g.openSession()
	if err != nil {
		code := "DB_MIGRATION_SETUP_FAILED"
		var setupErr *sessionSetupError
		if stderrors.As(err, &setupErr) {
			code = setupErr.code
		}
		g.logger.Error("migration runner initialization failed",
			zap.String("database_target", g.databaseTarget),
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, apperrors.NewInternal(
			code,
			"failed to initialize migration runner",
			g.details(),
		).WithCause(err)
	}

	return session, nil
}

func (g *Gateway) close(session migrationSession) {
	if err := session.Close(); err != nil {
		g.logger.Warn("migration runner close warning",
			zap.String("database_target", g.databaseTarget),
			zap.Error(err),
		)
	}
}

func (g *Gateway) details() map[string]any {
	source := g.migrationsPath
	if source == "" {
		source = "embedded"
	}

	return map[string]any{
		"database_target": g.databaseTarget,
		"migrations_path": source,
	}
}
