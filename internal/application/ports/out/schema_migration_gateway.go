package out

import (
	"context"

	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

type SchemaMigrationGateway interface {
	PlanMigrations(ctx context.Context) (dto.MigrationPlan, *apperrors.AppError)
	ApplyMigrations(ctx context.Context) (dto.ApplyMigrationsOutput, *apperrors.AppError)
}
