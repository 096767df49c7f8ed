package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Release is reported with every event. Injected at build time using ldflags.
var Release = "dev"

// SetupErrorReporting configures the Sentry SDK for error reporting. An empty
// dsn leaves reporting disabled and ReportError becomes a no-op.
func SetupErrorReporting(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     Release,
		// Lambda freezes the process after the response, so events must be
		// sent before the handler returns.
		Transport: sentry.NewHTTPSyncTransport(),
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	return nil
}

// ReportError reports an error to Sentry.
func ReportError(err error) {
	sentry.CaptureException(err)
}

// Flush waits up to timeout for buffered events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
