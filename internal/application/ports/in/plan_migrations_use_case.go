package in

import (
	"context"

	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

type PlanMigrationsUseCase interface {
	Execute(ctx context.Context, query dto.PlanMigrationsQuery) (dto.MigrationPlan, *apperrors.AppError)
}
