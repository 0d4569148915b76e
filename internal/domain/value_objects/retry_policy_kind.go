package valueobjects

import (
	"strings"

	apperrors "startgate/internal/shared_kernel/errors"
)

type RetryPolicyKind string

const (
	// RetryPolicyFixed polls at a constant interval with no attempt cap.
	RetryPolicyFixed RetryPolicyKind = "fixed"
	// RetryPolicyExponential backs off exponentially and gives up once its
	// attempt or elapsed-time budget is spent.
	RetryPolicyExponential RetryPolicyKind = "exponential"
)

func ParseRetryPolicyKind(raw string) (RetryPolicyKind, *apperrors.AppError) {
	switch RetryPolicyKind(strings.ToLower(strings.TrimSpace(raw))) {
	case RetryPolicyFixed:
		return RetryPolicyFixed, nil
	case RetryPolicyExponential:
		return RetryPolicyExponential, nil
	default:
		return "", apperrors.NewValidation(
			"RETRY_POLICY_INVALID",
			"retry policy is invalid",
			map[string]any{"retry_policy": raw},
		)
	}
}

func (k RetryPolicyKind) String() string {
	return string(k)
}
