package main

import (
	"context"
	"errors"

	apperrors "startgate/internal/shared_kernel/errors"
)

const (
	exitCodeOK          = 0
	exitCodeFatal       = 1
	exitCodeUsage       = 2
	exitCodeExecFailed  = 127
	exitCodeInterrupted = 130
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return &exitError{code: exitCodeUsage, err: err}
}

// exitCodeFor maps a command error to a process status. Errors that did not
// come from the gate itself are cobra parse and argument errors.
func exitCodeFor(err error) int {
	if err == nil {
		return exitCodeOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return exitCodeUsage
}

func exitCodeForAppError(ctx context.Context, appErr *apperrors.AppError) int {
	if errors.Is(ctx.Err(), context.Canceled) {
		return exitCodeInterrupted
	}

	switch appErr.Code {
	case "MAIN_COMMAND_NOT_FOUND", "MAIN_COMMAND_EXEC_FAILED":
		return exitCodeExecFailed
	case "MAIN_COMMAND_REQUIRED":
		return exitCodeUsage
	case "DB_READINESS_CANCELED":
		return exitCodeInterrupted
	default:
		return exitCodeFatal
	}
}
