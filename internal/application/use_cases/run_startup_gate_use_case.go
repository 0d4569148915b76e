package use_cases

import (
	"context"

	"go.uber.org/zap"

	"startgate/internal/application/dto"
	portsin "startgate/internal/application/ports/in"
	valueobjects "startgate/internal/domain/value_objects"
	apperrors "startgate/internal/shared_kernel/errors"
)

type runStartupGateUseCase struct {
	waitForDatabase portsin.WaitForDatabaseUseCase
	applyMigrations portsin.ApplyMigrationsUseCase
	execMain        portsin.ExecMainCommandUseCase
	logger          *zap.Logger
}

func NewRunStartupGateUseCase(
	waitForDatabase portsin.WaitForDatabaseUseCase,
	applyMigrations portsin.ApplyMigrationsUseCase,
	execMain portsin.ExecMainCommandUseCase,
	logger *zap.Logger,
) portsin.RunStartupGateUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &runStartupGateUseCase{
		waitForDatabase: waitForDatabase,
		applyMigrations: applyMigrations,
		execMain:        execMain,
		logger:          logger,
	}
}

func (u *runStartupGateUseCase) Execute(ctx context.Context, command dto.RunStartupGateCommand) (dto.RunStartupGateOutput, *apperrors.AppError) {
	output := dto.RunStartupGateOutput{FinalPhase: valueobjects.GatePhaseStart}

	if u.waitForDatabase == nil || u.applyMigrations == nil || u.execMain == nil {
		return output, apperrors.NewInternal(
			"STARTUP_GATE_DEPENDENCY_MISSING",
			"startup gate use cases are required",
			nil,
		)
	}

	// Checked before waiting so a broken entrypoint does not sit in the
	// readiness loop first.
	if appErr := validateMainCommand(command.MainCommand); appErr != nil {
		return output, appErr
	}

	if appErr := u.advance(&output, valueobjects.GatePhaseWaitingForDB); appErr != nil {
		return output, appErr
	}
	waitOutput, appErr := u.waitForDatabase.Execute(ctx, command.Wait)
	output.Wait = waitOutput
	if appErr != nil {
		return output, u.fail(&output, appErr)
	}

	if appErr := u.advance(&output, valueobjects.GatePhaseMigrating); appErr != nil {
		return output, appErr
	}
	migrationOutput, appErr := u.applyMigrations.Execute(ctx, dto.ApplyMigrationsCommand{})
	output.Migrations = migrationOutput
	if appErr != nil {
		return output, u.fail(&output, appErr)
	}

	if appErr := u.advance(&output, valueobjects.GatePhaseExecMain); appErr != nil {
		return output, appErr
	}
	if appErr := u.execMain.Execute(ctx, command.MainCommand); appErr != nil {
		return output, u.fail(&output, appErr)
	}

	return output, nil
}

func (u *runStartupGateUseCase) advance(output *dto.RunStartupGateOutput, next valueobjects.GatePhase) *apperrors.AppError {
	previous := output.FinalPhase
	phase, appErr := previous.Transition(next)
	if appErr != nil {
		return appErr
	}

	output.FinalPhase = phase
	u.logger.Info("startup gate phase changed",
		zap.Stringer("from", previous),
		zap.Stringer("phase", phase),
	)
	return nil
}

func (u *runStartupGateUseCase) fail(output *dto.RunStartupGateOutput, appErr *apperrors.AppError) *apperrors.AppError {
	failedIn := output.FinalPhase
	if transitionErr := u.advance(output, valueobjects.GatePhaseFatalExit); transitionErr != nil {
		return transitionErr
	}

	u.logger.Error("startup gate failed",
		zap.Stringer("failed_phase", failedIn),
		zap.String("code", appErr.Code),
		zap.Error(appErr),
	)
	return appErr.WithDetail("phase", failedIn.String())
}
