//go:build !integration

package use_cases

import (
	"context"
	"time"

	"startgate/internal/application/dto"
	valueobjects "startgate/internal/domain/value_objects"
	apperrors "startgate/internal/shared_kernel/errors"
)

type fakeProbeGateway struct {
	readinessErrors []*apperrors.AppError
	readinessChecks int
	deadlines       []bool
}

func (f *fakeProbeGateway) CheckReadiness(ctx context.Context) *apperrors.AppError {
	f.readinessChecks++
	_, hasDeadline := ctx.Deadline()
	f.deadlines = append(f.deadlines, hasDeadline)

	if len(f.readinessErrors) == 0 {
		return nil
	}

	index := f.readinessChecks - 1
	if index >= len(f.readinessErrors) {
		return f.readinessErrors[len(f.readinessErrors)-1]
	}

	return f.readinessErrors[index]
}

func (f *fakeProbeGateway) DatabaseTarget() string {
	return "db:5432/caritas_db"
}

func unreachable() *apperrors.AppError {
	return apperrors.NewUnavailable(
		"DB_CONNECT_FAILED",
		"failed to connect to database",
		map[string]any{valueobjects.ProbeFailureClassDetailKey: valueobjects.ProbeFailureClassTransient},
	)
}

func badPassword() *apperrors.AppError {
	return apperrors.NewUnavailable(
		"DB_CONNECT_FAILED",
		"failed to connect to database",
		map[string]any{valueobjects.ProbeFailureClassDetailKey: valueobjects.ProbeFailureClassConfiguration},
	)
}

// downFor returns a readiness script that fails n times before succeeding.
func downFor(n int) []*apperrors.AppError {
	script := make([]*apperrors.AppError, 0, n+1)
	for i := 0; i < n; i++ {
		script = append(script, unreachable())
	}
	return append(script, nil)
}

type fakeSleeper struct {
	slept       []time.Duration
	cancelAfter int
	cancel      context.CancelFunc
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	if f.cancel != nil && len(f.slept) >= f.cancelAfter {
		f.cancel()
	}
	return ctx.Err()
}

func (f *fakeSleeper) total() time.Duration {
	var total time.Duration
	for _, d := range f.slept {
		total += d
	}
	return total
}

// fakeLedger mimics a migration source plus the ledger table: apply moves the
// ledger to the newest source version.
type fakeLedger struct {
	sourceVersions []uint
	version        uint
	hasVersion     bool
	dirty          bool
	planErr        *apperrors.AppError
	applyErr       *apperrors.AppError
	planCalls      int
	applyCalls     int
}

func (f *fakeLedger) PlanMigrations(_ context.Context) (dto.MigrationPlan, *apperrors.AppError) {
	f.planCalls++
	if f.planErr != nil {
		return dto.MigrationPlan{}, f.planErr
	}

	plan := dto.MigrationPlan{
		CurrentVersion: f.version,
		HasVersion:     f.hasVersion,
		Dirty:          f.dirty,
	}
	for _, version := range f.sourceVersions {
		if !f.hasVersion || version > f.version {
			plan.Pending = append(plan.Pending, version)
		}
	}
	return plan, nil
}

func (f *fakeLedger) ApplyMigrations(_ context.Context) (dto.ApplyMigrationsOutput, *apperrors.AppError) {
	f.applyCalls++
	if f.applyErr != nil {
		return dto.ApplyMigrationsOutput{}, f.applyErr
	}

	latest := f.sourceVersions[len(f.sourceVersions)-1]
	if f.hasVersion && f.version == latest {
		return dto.ApplyMigrationsOutput{VersionAfter: f.version, NoChange: true}, nil
	}

	f.version = latest
	f.hasVersion = true
	return dto.ApplyMigrationsOutput{VersionAfter: latest}, nil
}

type fakeExecGateway struct {
	execErr  *apperrors.AppError
	commands []dto.ExecMainCommand
}

func (f *fakeExecGateway) Exec(command dto.ExecMainCommand) *apperrors.AppError {
	f.commands = append(f.commands, command)
	return f.execErr
}
