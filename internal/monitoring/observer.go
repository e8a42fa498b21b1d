package monitoring

import (
	"github.com/GriffinCanCode/TermOS/backend/internal/terminal"
)

// Observer adapts Metrics to the session manager's measurement interface.
type Observer struct {
	metrics *Metrics
}

// NewObserver creates a manager observer over m.
func NewObserver(m *Metrics) *Observer {
	return &Observer{metrics: m}
}

func (o *Observer) SessionOpened(backend terminal.BackendKind) {
	o.metrics.SessionsActive.Inc()
	o.metrics.SessionsTotal.WithLabelValues(string(backend)).Inc()
}

func (o *Observer) SessionClosed() {
	o.metrics.SessionsActive.Dec()
}

func (o *Observer) SpawnFailed() {
	o.metrics.SpawnFailures.Inc()
}

func (o *Observer) Output(bytes int) {
	o.metrics.OutputBytes.Add(float64(bytes))
}

func (o *Observer) Trimmed(bytes int) {
	o.metrics.TrimmedBytes.Add(float64(bytes))
}
