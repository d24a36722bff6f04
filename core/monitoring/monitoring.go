// Package monitoring defines the error reporting contract. One monitor is
// installed process-wide at startup; components report through the package
// functions instead of carrying a monitor reference around.
package monitoring

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Monitor receives errors and panics worth paging on.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. It is the default until Init runs.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// holder keeps the stored concrete type stable for atomic.Value.
type holder struct{ m Monitor }

var current atomic.Value

func init() {
	current.Store(holder{m: NopMonitor{}})
}

func active() Monitor {
	return current.Load().(holder).m
}

// Init installs the process-wide monitor. A nil monitor is ignored.
func Init(m Monitor) {
	if m != nil {
		current.Store(holder{m: m})
	}
}

// CaptureException reports err with optional tags. Nil errors are dropped.
func CaptureException(err error, tags map[string]string) {
	if err != nil {
		active().CaptureException(err, tags)
	}
}

// Recover reports an in-flight panic and re-raises it. Must be deferred
// directly at goroutine entry points so the runtime hands it the panic.
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	m := active()
	m.CaptureException(fmt.Errorf("panic: %v", r), map[string]string{"panic": "true"})
	m.Flush(2 * time.Second)
	panic(r)
}

// Flush blocks until buffered reports are delivered or the timeout passes.
func Flush(timeout time.Duration) {
	active().Flush(timeout)
}
