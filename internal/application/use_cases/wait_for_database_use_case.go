package use_cases

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"startgate/internal/application/dto"
	portsin "startgate/internal/application/ports/in"
	portsout "startgate/internal/application/ports/out"
	valueobjects "startgate/internal/domain/value_objects"
	apperrors "startgate/internal/shared_kernel/errors"
)

type waitForDatabaseUseCase struct {
	gateway portsout.DatabaseProbeGateway
	sleeper Sleeper
	logger  *zap.Logger
}

func NewWaitForDatabaseUseCase(
	gateway portsout.DatabaseProbeGateway,
	sleeper Sleeper,
	logger *zap.Logger,
) portsin.WaitForDatabaseUseCase {
	if sleeper == nil {
		sleeper = NewTimerSleeper()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &waitForDatabaseUseCase{
		gateway: gateway,
		sleeper: sleeper,
		logger:  logger,
	}
}

func (u *waitForDatabaseUseCase) Execute(ctx context.Context, command dto.WaitForDatabaseCommand) (dto.WaitForDatabaseOutput, *apperrors.AppError) {
	if u.gateway == nil {
		return dto.WaitForDatabaseOutput{}, apperrors.NewInternal(
			"DB_PROBE_GATEWAY_MISSING",
			"database probe gateway is required",
			nil,
		)
	}

	if command.ProbeTimeout < 0 {
		return dto.WaitForDatabaseOutput{}, apperrors.NewValidation(
			"PROBE_TIMEOUT_INVALID",
			"probe timeout must not be negative",
			nil,
		)
	}

	switch command.RetryPolicy {
	case valueobjects.RetryPolicyFixed, "":
		if command.RetryInterval <= 0 {
			return dto.WaitForDatabaseOutput{}, apperrors.NewValidation(
				"READINESS_RETRY_INTERVAL_INVALID",
				"readiness retry interval must be greater than zero",
				nil,
			)
		}
		return u.waitFixed(ctx, command)
	case valueobjects.RetryPolicyExponential:
		if appErr := validateBackoffSettings(command.Backoff); appErr != nil {
			return dto.WaitForDatabaseOutput{}, appErr
		}
		return u.waitExponential(ctx, command)
	default:
		return dto.WaitForDatabaseOutput{}, apperrors.NewValidation(
			"RETRY_POLICY_INVALID",
			"retry policy is invalid",
			map[string]any{"retry_policy": command.RetryPolicy.String()},
		)
	}
}

// waitFixed never gives up on its own: only a fail-fast classification or ctx
// cancellation ends the loop without a successful probe.
func (u *waitForDatabaseUseCase) waitFixed(ctx context.Context, command dto.WaitForDatabaseCommand) (dto.WaitForDatabaseOutput, *apperrors.AppError) {
	output := dto.WaitForDatabaseOutput{DatabaseTarget: u.gateway.DatabaseTarget()}

	for {
		output.Attempts++
		appErr := u.probe(ctx, command, output.Attempts)
		if appErr == nil {
			u.logReady(output)
			return output, nil
		}

		if fatalErr := failFast(command, appErr); fatalErr != nil {
			return output, fatalErr
		}

		if err := u.sleeper.Sleep(ctx, command.RetryInterval); err != nil {
			return output, canceledError(output, err)
		}
		output.Waited += command.RetryInterval
	}
}

func (u *waitForDatabaseUseCase) waitExponential(ctx context.Context, command dto.WaitForDatabaseCommand) (dto.WaitForDatabaseOutput, *apperrors.AppError) {
	output := dto.WaitForDatabaseOutput{DatabaseTarget: u.gateway.DatabaseTarget()}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = command.Backoff.InitialInterval
	policy.MaxInterval = command.Backoff.MaxInterval

	var (
		fatalErr *apperrors.AppError
		lastErr  *apperrors.AppError
	)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		output.Attempts++
		appErr := u.probe(ctx, command, output.Attempts)
		if appErr == nil {
			return struct{}{}, nil
		}
		lastErr = appErr

		if fatalErr = failFast(command, appErr); fatalErr != nil {
			return struct{}{}, backoff.Permanent(fatalErr)
		}
		return struct{}{}, appErr
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(command.Backoff.MaxAttempts),
		backoff.WithMaxElapsedTime(command.Backoff.MaxElapsed),
		backoff.WithNotify(func(_ error, next time.Duration) {
			output.Waited += next
		}),
	)
	if err == nil {
		u.logReady(output)
		return output, nil
	}

	if fatalErr != nil {
		return output, fatalErr
	}

	if ctx.Err() != nil {
		return output, canceledError(output, ctx.Err())
	}

	details := map[string]any{
		"attempts":     strconv.Itoa(output.Attempts),
		"max_attempts": strconv.FormatUint(uint64(command.Backoff.MaxAttempts), 10),
		"max_elapsed":  command.Backoff.MaxElapsed.String(),
	}
	if lastErr != nil {
		details["last_code"] = lastErr.Code
	}
	u.logger.Error("database readiness retries exhausted",
		zap.String("database_target", output.DatabaseTarget),
		zap.Int("attempts", output.Attempts),
	)
	return output, apperrors.NewUnavailable(
		"DB_READINESS_EXHAUSTED",
		"database did not become ready within the retry budget",
		details,
	).WithCause(err)
}

func (u *waitForDatabaseUseCase) probe(ctx context.Context, command dto.WaitForDatabaseCommand, attempt int) *apperrors.AppError {
	probeCtx := ctx
	if command.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, command.ProbeTimeout)
		defer cancel()
	}

	appErr := u.gateway.CheckReadiness(probeCtx)
	if appErr != nil {
		u.logger.Debug("database not ready",
			zap.String("database_target", u.gateway.DatabaseTarget()),
			zap.Int("attempt", attempt),
			zap.String("code", appErr.Code),
			zap.Stringer("failure_class", valueobjects.ProbeFailureClassFromDetails(appErr.Details)),
		)
	}
	return appErr
}

func (u *waitForDatabaseUseCase) logReady(output dto.WaitForDatabaseOutput) {
	u.logger.Info("database ready",
		zap.String("database_target", output.DatabaseTarget),
		zap.Int("attempts", output.Attempts),
		zap.Duration("waited", output.Waited),
	)
}

func failFast(command dto.WaitForDatabaseCommand, appErr *apperrors.AppError) *apperrors.AppError {
	if !command.FailFastOnConfigError {
		return nil
	}
	if valueobjects.ProbeFailureClassFromDetails(appErr.Details) != valueobjects.ProbeFailureClassConfiguration {
		return nil
	}

	return apperrors.NewValidation(
		"DB_PROBE_CONFIGURATION_INVALID",
		"database rejected the configured connection parameters",
		map[string]any{"probe_code": appErr.Code},
	).WithCause(appErr)
}

func canceledError(output dto.WaitForDatabaseOutput, cause error) *apperrors.AppError {
	code := "DB_READINESS_CANCELED"
	if stderrors.Is(cause, context.DeadlineExceeded) {
		code = "DB_READINESS_TIMEOUT"
	}

	return apperrors.NewUnavailable(
		code,
		"database readiness wait was interrupted",
		map[string]any{
			"attempts": strconv.Itoa(output.Attempts),
			"waited":   output.Waited.String(),
		},
	).WithCause(cause)
}

func validateBackoffSettings(settings dto.BackoffSettings) *apperrors.AppError {
	switch {
	case settings.InitialInterval <= 0:
		return apperrors.NewValidation("BACKOFF_INITIAL_INTERVAL_INVALID", "backoff initial interval must be greater than zero", nil)
	case settings.MaxInterval < settings.InitialInterval:
		return apperrors.NewValidation("BACKOFF_MAX_INTERVAL_INVALID", "backoff max interval must not be below the initial interval", nil)
	case settings.MaxAttempts == 0:
		return apperrors.NewValidation("BACKOFF_MAX_ATTEMPTS_INVALID", "backoff max attempts must be greater than zero", nil)
	case settings.MaxElapsed <= 0:
		return apperrors.NewValidation("BACKOFF_MAX_ELAPSED_INVALID", "backoff max elapsed time must be greater than zero", nil)
	}
	return nil
}
