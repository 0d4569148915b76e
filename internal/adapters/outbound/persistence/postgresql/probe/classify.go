package probe

import (
	"context"
	stderrors "errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	valueobjects "startgate/internal/domain/value_objects"
)

// SQLSTATEs that retrying will not fix without an operator changing the
// credentials or database name.
var configurationSQLStates = map[string]struct{}{
	"28000": {}, // invalid_authorization_specification
	"28P01": {}, // invalid_password
	"3D000": {}, // invalid_catalog_name
	"42501": {}, // insufficient_privilege
}

func ClassifyError(err error) valueobjects.ProbeFailureClass {
	if err == nil {
		return valueobjects.ProbeFailureClassUnknown
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		if _, ok := configurationSQLStates[pgErr.Code]; ok {
			return valueobjects.ProbeFailureClassConfiguration
		}
		// 08 connection exception, 53 insufficient resources, 57P0x shutdown/startup.
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "53") || strings.HasPrefix(pgErr.Code, "57P") {
			return valueobjects.ProbeFailureClassTransient
		}
		return valueobjects.ProbeFailureClassUnknown
	}

	var parseErr *pgconn.ParseConfigError
	if stderrors.As(err, &parseErr) {
		return valueobjects.ProbeFailureClassConfiguration
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return valueobjects.ProbeFailureClassTransient
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return valueobjects.ProbeFailureClassTransient
	}

	var connectErr *pgconn.ConnectError
	if stderrors.As(err, &connectErr) {
		return valueobjects.ProbeFailureClassTransient
	}

	return valueobjects.ProbeFailureClassUnknown
}
