package in

import (
	"context"

	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

type WaitForDatabaseUseCase interface {
	Execute(ctx context.Context, command dto.WaitForDatabaseCommand) (dto.WaitForDatabaseOutput, *apperrors.AppError)
}
