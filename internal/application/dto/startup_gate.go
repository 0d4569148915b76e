package dto

import valueobjects "startgate/internal/domain/value_objects"

type ExecMainCommand struct {
	Argv []string
	// Env defaults to the current process environment when nil.
	Env []string
}

type RunStartupGateCommand struct {
	Wait        WaitForDatabaseCommand
	MainCommand ExecMainCommand
}

type RunStartupGateOutput struct {
	FinalPhase valueobjects.GatePhase
	Wait       WaitForDatabaseOutput
	Migrations ApplyMigrationsOutput
}
