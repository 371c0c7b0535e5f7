package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsRetryable reports whether an error is a transient infrastructure failure
// worth retrying at the transaction boundary: a request pgconn knows never
// reached the server, a connection-class failure (SQLSTATE 08xxx), a
// serialization failure (40001) or a deadlock (40P01). Domain errors are
// never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "40001" ||
			pgErr.Code == "40P01"
	}

	return false
}
