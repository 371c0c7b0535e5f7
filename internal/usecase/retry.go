package usecase

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"railbook/internal/infrastructure/postgres"
)

var transientRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "railbook_tx_transient_retries_total",
	Help: "Transactions retried after a transient infrastructure failure",
})

const (
	txRetryAttempts = 3
	txRetryBackoff  = 50 * time.Millisecond
)

// withTxRetry runs one transaction, retrying transient infrastructure
// failures (connection loss, serialization) with exponential backoff. Domain
// errors return on the first attempt.
func withTxRetry(ctx context.Context, run func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = run()
		if err == nil || !postgres.IsRetryable(err) || attempt >= txRetryAttempts {
			return err
		}
		transientRetries.Inc()

		select {
		case <-ctx.Done():
			return err
		case <-time.After(txRetryBackoff << attempt):
		}
	}
}
