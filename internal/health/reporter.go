// server/internal/health/reporter.go
package health

import (
	"time"

	"equipment-dispatch-api-server/internal/models"
)

// Probe exposes the last known connection state of a backing store.
type Probe interface {
	Connected() bool
	LastError() error
}

// Report is the body of GET /health.
type Report struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	Timestamp      string `json:"timestamp"`
	CacheConnected bool   `json:"cache_connected"`
	QueueConnected *bool  `json:"queue_connected,omitempty"`
	CacheError     string `json:"cache_error,omitempty"`
	QueueError     string `json:"queue_error,omitempty"`
}

// Reporter reads probe state without touching the network.
type Reporter struct {
	service string
	cache   Probe
	queue   Probe
	now     func() time.Time
}

// NewReporter builds a reporter. queue may be nil for services without a broker.
func NewReporter(service string, cache, queue Probe) *Reporter {
	return &Reporter{service: service, cache: cache, queue: queue, now: time.Now}
}

// Report returns the current flags.
func (r *Reporter) Report() Report {
	rep := Report{
		Status:         "OK",
		Service:        r.service,
		Timestamp:      r.now().Format(models.TimestampLayout),
		CacheConnected: r.cache.Connected(),
		CacheError:     errText(r.cache.LastError()),
	}
	if r.queue != nil {
		connected := r.queue.Connected()
		rep.QueueConnected = &connected
		rep.QueueError = errText(r.queue.LastError())
	}
	return rep
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
