package out

import (
	"context"

	apperrors "startgate/internal/shared_kernel/errors"
)

// DatabaseProbeGateway opens a throwaway connection per CheckReadiness call.
// Failures carry a valueobjects.ProbeFailureClass under
// valueobjects.ProbeFailureClassDetailKey.
type DatabaseProbeGateway interface {
	CheckReadiness(ctx context.Context) *apperrors.AppError
	DatabaseTarget() string
}
