package in

import (
	"context"

	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

type ApplyMigrationsUseCase interface {
	Execute(ctx context.Context, command dto.ApplyMigrationsCommand) (dto.ApplyMigrationsOutput, *apperrors.AppError)
}
