package out

import (
	"startgate/internal/application/dto"
	apperrors "startgate/internal/shared_kernel/errors"
)

type ProcessExecGateway interface {
	Exec(command dto.ExecMainCommand) *apperrors.AppError
}
