package in

import (
	"context"

	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

// ExecMainCommandUseCase does not return on success: the process image is
// replaced by the main command.
type ExecMainCommandUseCase interface {
	Execute(ctx context.Context, command dto.ExecMainCommand) *apperrors.AppError
}
