package use_cases

import (
	"context"

	"startgate/internal/application/dto"
	portsin "startgate/internal/application/ports/in"
	portsout "startgate/internal/application/ports/out"
	apperrors "startgate/internal/shared_kernel/errors"
)

type execMainCommandUseCase struct {
	gateway portsout.ProcessExecGateway
}

func NewExecMainCommandUseCase(gateway portsout.ProcessExecGateway) portsin.ExecMainCommandUseCase {
	return &execMainCommandUseCase{
		gateway: gateway,
	}
}

func (u *execMainCommandUseCase) Execute(ctx context.Context, command dto.ExecMainCommand) *apperrors.AppError {
	if u.gateway == nil {
		return apperrors.NewInternal(
			"PROCESS_EXEC_GATEWAY_MISSING",
			"process exec gateway is required",
			nil,
		)
	}

	if appErr := validateMainCommand(command); appErr != nil {
		return appErr
	}

	if err := ctx.Err(); err != nil {
		return apperrors.NewUnavailable(
			"MAIN_COMMAND_CANCELED",
			"main command handoff canceled",
			nil,
		).WithCause(err)
	}

	return u.gateway.Exec(command)
}

func validateMainCommand(command dto.ExecMainCommand) *apperrors.AppError {
	if len(command.Argv) == 0 || command.Argv[0] == "" {
		return apperrors.NewValidation(
			"MAIN_COMMAND_REQUIRED",
			"main command is required",
			nil,
		)
	}
	return nil
}
