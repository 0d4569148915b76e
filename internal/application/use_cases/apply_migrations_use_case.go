package use_cases

import (
	"context"

	"go.uber.org/zap"

	"startgate/internal/application/dto"
	portsin "startgate/internal/application/ports/in"
	portsout "startgate/internal/application/ports/out"
	apperrors "startgate/internal/shared_kernel/errors"
)

type applyMigrationsUseCase struct {
	gateway portsout.SchemaMigrationGateway
	logger  *zap.Logger
}

func NewApplyMigrationsUseCase(gateway portsout.SchemaMigrationGateway, logger *zap.Logger) portsin.ApplyMigrationsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &applyMigrationsUseCase{
		gateway: gateway,
		logger:  logger,
	}
}

// Execute runs the detect step and then the apply step. Both are no-ops when
// the ledger is already at the newest source version, so repeated calls are
// safe.
func (u *applyMigrationsUseCase) Execute(ctx context.Context, _ dto.ApplyMigrationsCommand) (dto.ApplyMigrationsOutput, *apperrors.AppError) {
	if u.gateway == nil {
		return dto.ApplyMigrationsOutput{}, apperrors.NewInternal(
			"SCHEMA_MIGRATION_GATEWAY_MISSING",
			"schema migration gateway is required",
			nil,
		)
	}

	plan, appErr := planMigrations(ctx, u.gateway)
	if appErr != nil {
		return dto.ApplyMigrationsOutput{}, appErr
	}

	u.logger.Info("database migration plan computed",
		zap.Uint("current_version", plan.CurrentVersion),
		zap.Bool("has_version", plan.HasVersion),
		zap.Uints("pending", plan.Pending),
	)

	output, appErr := u.gateway.ApplyMigrations(ctx)
	if appErr != nil {
		return dto.ApplyMigrationsOutput{}, appErr
	}

	output.VersionBefore = plan.CurrentVersion
	output.Applied = appliedVersions(plan.Pending, output)

	if output.NoChange {
		u.logger.Info("database migrations up to date", zap.Uint("version", output.VersionAfter))
	} else {
		u.logger.Info("database migrations applied",
			zap.Uint("version_before", output.VersionBefore),
			zap.Uint("version_after", output.VersionAfter),
			zap.Uints("applied", output.Applied),
		)
	}

	return output, nil
}

// planMigrations refuses a dirty ledger: a half-applied revision needs an
// operator, not another apply attempt.
func planMigrations(ctx context.Context, gateway portsout.SchemaMigrationGateway) (dto.MigrationPlan, *apperrors.AppError) {
	plan, appErr := gateway.PlanMigrations(ctx)
	if appErr != nil {
		return dto.MigrationPlan{}, appErr
	}

	if plan.Dirty {
		return plan, apperrors.NewInternal(
			"DB_MIGRATION_LEDGER_DIRTY",
			"database migration ledger is dirty",
			map[string]any{"version": plan.CurrentVersion},
		)
	}

	if plan.Pending == nil {
		plan.Pending = []uint{}
	}
	return plan, nil
}

func appliedVersions(pending []uint, output dto.ApplyMigrationsOutput) []uint {
	applied := []uint{}
	if output.NoChange {
		return applied
	}

	for _, version := range pending {
		if version <= output.VersionAfter {
			applied = append(applied, version)
		}
	}
	return applied
}
