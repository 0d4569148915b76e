package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"startgate/internal/application/dto"
	"startgate/internal/infrastructure/config"
	"startgate/internal/infrastructure/di"
	"startgate/internal/infrastructure/logging"
	apperrors "startgate/internal/shared_kernel/errors"
)

type runtime struct {
	stdout         io.Writer
	stderr         io.Writer
	newLogger      func(level string, format string) (*zap.Logger, error)
	buildContainer func(cfg config.Config, logger *zap.Logger) di.Container
}

func defaultRuntime() runtime {
	return runtime{
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		newLogger:      logging.New,
		buildContainer: di.Build,
	}
}

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
}

type app struct {
	runtime runtime
	options rootOptions
}

type session struct {
	cfg       config.Config
	logger    *zap.Logger
	container di.Container
}

func execute(ctx context.Context, args []string, rt runtime) int {
	a := &app{runtime: rt}
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(rt.stdout)
	root.SetErr(rt.stderr)

	err := root.ExecuteContext(ctx)
	code := exitCodeFor(err)
	if code == exitCodeUsage && err != nil {
		fmt.Fprintf(rt.stderr, "startgate: %v\n", err)
	}
	return code
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "startgate [flags] -- <command> [args...]",
		Short: "Wait for PostgreSQL, apply schema migrations, then exec the main command",
		Long: "startgate blocks until the configured PostgreSQL database accepts connections,\n" +
			"applies pending schema migrations and replaces itself with the given command.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError(errors.New("a main command is required after --"))
			}
			return a.runGate(cmd.Context(), args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().SetInterspersed(false)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.options.configFile, "config", "", "optional TOML config file (env vars take precedence)")
	flags.StringVar(&a.options.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.options.logFormat, "log-format", "", "log format override (json or console)")

	root.AddCommand(a.newWaitCommand(), a.newMigrateCommand(), a.newPlanCommand())
	return root
}

func (a *app) newWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait",
		Short: "Block until the database accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.prepare()
			if err != nil {
				return err
			}
			defer syncLogger(s.logger)

			if _, appErr := s.container.WaitForDatabaseUseCase.Execute(cmd.Context(), di.WaitCommand(s.cfg)); appErr != nil {
				return a.gateFailure(cmd.Context(), s.logger, appErr)
			}
			return nil
		},
	}
}

func (a *app) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Wait for the database and apply pending migrations without starting a command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.prepare()
			if err != nil {
				return err
			}
			defer syncLogger(s.logger)

			ctx := cmd.Context()
			if _, appErr := s.container.WaitForDatabaseUseCase.Execute(ctx, di.WaitCommand(s.cfg)); appErr != nil {
				return a.gateFailure(ctx, s.logger, appErr)
			}
			if _, appErr := s.container.ApplyMigrationsUseCase.Execute(ctx, dto.ApplyMigrationsCommand{}); appErr != nil {
				return a.gateFailure(ctx, s.logger, appErr)
			}
			return nil
		},
	}
}

func (a *app) newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Wait for the database and print pending migration versions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.prepare()
			if err != nil {
				return err
			}
			defer syncLogger(s.logger)

			ctx := cmd.Context()
			if _, appErr := s.container.WaitForDatabaseUseCase.Execute(ctx, di.WaitCommand(s.cfg)); appErr != nil {
				return a.gateFailure(ctx, s.logger, appErr)
			}
			plan, appErr := s.container.PlanMigrationsUseCase.Execute(ctx, dto.PlanMigrationsQuery{})
			if appErr != nil {
				return a.gateFailure(ctx, s.logger, appErr)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(plan); err != nil {
				return &exitError{code: exitCodeFatal, err: fmt.Errorf("write migration plan: %w", err)}
			}
			return nil
		},
	}
}

func (a *app) runGate(ctx context.Context, argv []string) error {
	s, err := a.prepare()
	if err != nil {
		return err
	}
	defer syncLogger(s.logger)

	// On success the exec replaces this process and Execute never returns.
	_, appErr := s.container.RunStartupGateUseCase.Execute(ctx, dto.RunStartupGateCommand{
		Wait:        di.WaitCommand(s.cfg),
		MainCommand: dto.ExecMainCommand{Argv: argv},
	})
	if appErr != nil {
		return a.gateFailure(ctx, s.logger, appErr)
	}
	return nil
}

func (a *app) prepare() (session, error) {
	cfg, cfgErr := config.LoadConfig(config.LoadOptions{ConfigFile: a.options.configFile})
	if cfgErr != nil {
		logger, err := a.runtime.newLogger(a.options.logLevel, a.options.logFormat)
		if err != nil {
			fmt.Fprintf(a.runtime.stderr, "startgate: config error code=%s message=%s\n", cfgErr.Code, cfgErr.Message)
			return session{}, &exitError{code: exitCodeFatal, err: cfgErr}
		}
		logger.Error("startup config error",
			zap.String("code", cfgErr.Code),
			zap.String("message", cfgErr.Message),
			zap.Any("metadata", cfgErr.Metadata),
		)
		syncLogger(logger)
		return session{}, &exitError{code: exitCodeFatal, err: cfgErr}
	}

	if a.options.logLevel != "" {
		cfg.Log.Level = a.options.logLevel
	}
	if a.options.logFormat != "" {
		cfg.Log.Format = a.options.logFormat
	}

	logger, err := a.runtime.newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return session{}, usageError(err)
	}

	logger.Info("startgate configured",
		zap.String("database_target", cfg.DatabaseTarget()),
		zap.Stringer("retry_policy", cfg.RetryPolicy()),
		zap.Bool("embedded_migrations", cfg.Migrations.Path == ""),
	)

	return session{
		cfg:       cfg,
		logger:    logger,
		container: a.runtime.buildContainer(cfg, logger),
	}, nil
}

func (a *app) gateFailure(ctx context.Context, logger *zap.Logger, appErr *apperrors.AppError) error {
	code := exitCodeForAppError(ctx, appErr)
	logger.Error("startgate exiting",
		zap.String("code", appErr.Code),
		zap.String("type", string(appErr.Type)),
		zap.Int("exit_code", code),
	)
	return &exitError{code: code, err: appErr}
}

func syncLogger(logger *zap.Logger) {
	// stderr cannot always be synced; nothing useful to do about it.
	_ = logger.Sync()
}
