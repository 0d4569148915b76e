package probe

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	portsout "startgate/internal/application/ports/out"
	valueobjects "startgate/internal/domain/value_objects"
	apperrors "startgate/internal/shared_kernel/errors"
)

const driverName = "pgx"

// Opener matches sql.Open.
type Opener func(driverName string, dataSourceName string) (*sql.DB, error)

type Gateway struct {
	databaseURL    string
	databaseTarget string
	open           Opener
	logger         *zap.Logger
}

var _ portsout.DatabaseProbeGateway = (*Gateway)(nil)

func NewGateway(databaseURL string, databaseTarget string, logger *zap.Logger) *Gateway {
	return NewGatewayWithOpener(databaseURL, databaseTarget, sql.Open, logger)
}

func NewGatewayWithOpener(databaseURL string, databaseTarget string, open Opener, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gateway{
		databaseURL:    databaseURL,
		databaseTarget: databaseTarget,
		open:           open,
		logger:         logger,
	}
}

func (g *Gateway) DatabaseTarget() string {
	return g.databaseTarget
}

// CheckReadiness opens a dedicated single-connection handle, pings it and
// closes it again. Nothing from the attempt survives the call.
func (g *Gateway) CheckReadiness(ctx context.Context) *apperrors.AppError {
	db, err := g.open(driverName, g.databaseURL)
	if err != nil {
		class := ClassifyError(err)
		g.logger.Debug("database connection initialization failed",
			zap.String("database_target", g.databaseTarget),
			zap.Stringer("failure_class", class),
			zap.Error(err),
		)
		return apperrors.NewUnavailable(
			"DB_CONNECT_INIT_FAILED",
			"failed to initialize database connection",
			g.details(class),
		).WithCause(err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			g.logger.Debug("database probe close warning",
				zap.String("database_target", g.databaseTarget),
				zap.Error(closeErr),
			)
		}
	}()

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		class := ClassifyError(err)
		g.logger.Debug("database readiness check failed",
			zap.String("database_target", g.databaseTarget),
			zap.Stringer("failure_class", class),
			zap.Error(err),
		)
		return apperrors.NewUnavailable(
			"DB_CONNECT_FAILED",
			"failed to connect to database",
			g.details(class),
		).WithCause(err)
	}

	g.logger.Debug("database readiness check succeeded", zap.String("database_target", g.databaseTarget))
	return nil
}

func (g *Gateway) details(class valueobjects.ProbeFailureClass) map[string]any {
	return map[string]any{
		"database_target":                       g.databaseTarget,
		valueobjects.ProbeFailureClassDetailKey: class,
	}
}
