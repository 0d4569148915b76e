package di

import (
	"go.uber.org/zap"

	"startgate/internal/adapters/outbound/persistence/postgresql/probe"
	"startgate/internal/adapters/outbound/persistence/postgresql/schema"
	"startgate/internal/adapters/outbound/process"
	"startgate/internal/application/dto"
	portsin "startgate/internal/application/ports/in"
	"startgate/internal/application/use_cases"
	"startgate/internal/infrastructure/config"
)

type Container struct {
	WaitForDatabaseUseCase portsin.WaitForDatabaseUseCase
	ApplyMigrationsUseCase portsin.ApplyMigrationsUseCase
	PlanMigrationsUseCase  portsin.PlanMigrationsUseCase
	ExecMainCommandUseCase portsin.ExecMainCommandUseCase
	RunStartupGateUseCase  portsin.RunStartupGateUseCase
}

func Build(cfg config.Config, logger *zap.Logger) Container {
	if logger == nil {
		logger = zap.NewNop()
	}

	databaseURL := cfg.DatabaseURL()
	databaseTarget := cfg.DatabaseTarget()

	probeGateway := probe.NewGateway(databaseURL, databaseTarget, logger.Named("probe"))
	schemaGateway := schema.NewGateway(databaseURL, databaseTarget, cfg.Migrations.Path, logger.Named("schema"))
	processGateway := process.NewGateway(logger.Named("process"))

	waitForDatabaseUseCase := use_cases.NewWaitForDatabaseUseCase(probeGateway, use_cases.NewTimerSleeper(), logger)
	applyMigrationsUseCase := use_cases.NewApplyMigrationsUseCase(schemaGateway, logger)
	planMigrationsUseCase := use_cases.NewPlanMigrationsUseCase(schemaGateway)
	execMainCommandUseCase := use_cases.NewExecMainCommandUseCase(processGateway)

	return Container{
		WaitForDatabaseUseCase: waitForDatabaseUseCase,
		ApplyMigrationsUseCase: applyMigrationsUseCase,
		PlanMigrationsUseCase:  planMigrationsUseCase,
		ExecMainCommandUseCase: execMainCommandUseCase,
		RunStartupGateUseCase: use_cases.NewRunStartupGateUseCase(
			waitForDatabaseUseCase,
			applyMigrationsUseCase,
			execMainCommandUseCase,
			logger,
		),
	}
}

func WaitCommand(cfg config.Config) dto.WaitForDatabaseCommand {
	return dto.WaitForDatabaseCommand{
		RetryPolicy:   cfg.RetryPolicy(),
		RetryInterval: cfg.Gate.RetryInterval,
		ProbeTimeout:  cfg.Gate.ProbeTimeout,
		Backoff: dto.BackoffSettings{
			InitialInterval: cfg.Gate.BackoffInitial,
			MaxInterval:     cfg.Gate.BackoffMaxInterval,
			MaxAttempts:     cfg.Gate.BackoffMaxAttempts,
			MaxElapsed:      cfg.Gate.BackoffMaxElapsed,
		},
		FailFastOnConfigError: cfg.Gate.FailFastConfigErrors,
	}
}
