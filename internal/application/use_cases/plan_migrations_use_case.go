package use_cases

import (
	"context"

	"startgate/internal/application/dto"
	portsin "startgate/internal/application/ports/in"
	portsout "startgate/internal/application/ports/out"
	apperrors "startgate/internal/shared_kernel/errors"
)

type planMigrationsUseCase struct {
	gateway portsout.SchemaMigrationGateway
}

func NewPlanMigrationsUseCase(gateway portsout.SchemaMigrationGateway) portsin.PlanMigrationsUseCase {
	return &planMigrationsUseCase{
		gateway: gateway,
	}
}

func (u *planMigrationsUseCase) Execute(ctx context.Context, _ dto.PlanMigrationsQuery) (dto.MigrationPlan, *apperrors.AppError) {
	if u.gateway == nil {
		return dto.MigrationPlan{}, apperrors.NewInternal(
			"SCHEMA_MIGRATION_GATEWAY_MISSING",
			"schema migration gateway is required",
			nil,
		)
	}

	return planMigrations(ctx, u.gateway)
}
