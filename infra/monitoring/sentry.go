// Package monitoring implements the error monitor on Sentry.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/opfleet/fleethealth/config"
	coremon "github.com/opfleet/fleethealth/core/monitoring"
)

const panicFlushTimeout = 2 * time.Second

type sentryMonitor struct{}

// NewSentryMonitor builds a monitor from the sentry config section. With no
// DSN configured it degrades to a NopMonitor so callers never nil-check.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	opts := sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
	}
	if err := sentry.Init(opts); err != nil {
		return nil, err
	}
	return &sentryMonitor{}, nil
}

func (m *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Recover forwards a panic to Sentry and re-raises it. Meant to be deferred
// at goroutine entry points.
func (m *sentryMonitor) Recover() {
	r := recover()
	if r == nil {
		return
	}
	sentry.CurrentHub().Recover(r)
	sentry.Flush(panicFlushTimeout)
	panic(r)
}

func (m *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
