package in

import (
	"context"

	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

type RunStartupGateUseCase interface {
	Execute(ctx context.Context, command dto.RunStartupGateCommand) (dto.RunStartupGateOutput, *apperrors.AppError)
}
