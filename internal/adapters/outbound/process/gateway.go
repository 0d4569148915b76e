package process

import (
	"os"
	"os/exec"

	"go.uber.org/zap"

	"startgate/internal/application/dto"
	portsout "startgate/internal/application/ports/out"
	apperrors "startgate/internal/shared_kernel/errors"
)

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(argv0 string, argv []string, envv []string) error

type Gateway struct {
	lookPath func(file string) (string, error)
	exec     ExecFunc
	logger   *zap.Logger
}

var _ portsout.ProcessExecGateway = (*Gateway)(nil)

func NewGateway(logger *zap.Logger) *Gateway {
	return NewGatewayWithExec(exec.LookPath, systemExec, logger)
}

func NewGatewayWithExec(lookPath func(file string) (string, error), execFn ExecFunc, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		lookPath: lookPath,
		exec:     execFn,
		logger:   logger,
	}
}

func (g *Gateway) Exec(command dto.ExecMainCommand) *apperrors.AppError {
	if len(command.Argv) == 0 || command.Argv[0] == "" {
		return apperrors.NewValidation(
			"MAIN_COMMAND_REQUIRED",
			"main command is required",
			nil,
		)
	}

	path, err := g.lookPath(command.Argv[0])
	if err != nil {
		return apperrors.NewInternal(
			"MAIN_COMMAND_NOT_FOUND",
			"main command not found",
			map[string]any{"command": command.Argv[0]},
		).WithCause(err)
	}

	env := command.Env
	if env == nil {
		env = os.Environ()
	}

	g.logger.Info("handing off to main command",
		zap.String("path", path),
		zap.Strings("argv", command.Argv),
	)
	// Buffered entries are lost once the image is replaced.
	_ = g.logger.Sync()

	if err := g.exec(path, command.Argv, env); err != nil {
		return apperrors.NewInternal(
			"MAIN_COMMAND_EXEC_FAILED",
			"failed to exec main command",
			map[string]any{"command": command.Argv[0], "path": path},
		).WithCause(err)
	}

	return nil
}
