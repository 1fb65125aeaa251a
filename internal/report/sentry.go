package report

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initialises the global Sentry client. An empty dsn leaves
// Sentry disabled and every report call becomes a no-op.
func SetupSentry(dsn, env string) error {
	if dsn == "" {
		log.Println("[Sentry] SENTRY_DSN not set, error reporting disabled")
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		AttachStacktrace: true,
		TracesSampleRate: 0,
	}); err != nil {
		return err
	}
	sentry.CaptureMessage("CitizenLink insights service started")
	return nil
}

// FlushSentry waits for buffered events to be delivered
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
