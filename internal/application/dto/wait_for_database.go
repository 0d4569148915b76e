package dto

import (
	"time"

	valueobjects "startgate/internal/domain/value_objects"
)

type WaitForDatabaseCommand struct {
	RetryPolicy           valueobjects.RetryPolicyKind
	RetryInterval         time.Duration
	ProbeTimeout          time.Duration
	Backoff               BackoffSettings
	FailFastOnConfigError bool
}

// BackoffSettings only applies to the exponential retry policy.
type BackoffSettings struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     uint
	MaxElapsed      time.Duration
}

type WaitForDatabaseOutput struct {
	DatabaseTarget string
	Attempts       int
	Waited         time.Duration
}
