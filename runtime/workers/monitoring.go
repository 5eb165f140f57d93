package workers

import (
	"context"
	"time"

	"github.com/destinyy00/skillswap/observability"
)

// MonitoringWorker drives the monitoring manager's snapshot loop under the
// supervisor.
type MonitoringWorker struct {
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewMonitoringWorker(monitoring *observability.MonitoringManager, interval time.Duration) *MonitoringWorker {
	return &MonitoringWorker{monitoring: monitoring, interval: interval}
}

func (w *MonitoringWorker) Run(ctx context.Context) error {
	w.monitoring.Listen(ctx, w.interval)
	return ctx.Err()
}
