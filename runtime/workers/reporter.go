package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/destinyy00/skillswap/observability"
)

// ReporterWorker periodically logs the latest relay snapshot so an operator
// tailing the logs sees throughput without hitting the stats endpoint.
type ReporterWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewReporterWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	startTime := time.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report(startTime)
			w.log.Info("Reporter stopped")
			return ctx.Err()
		case <-ticker.C:
			w.report(startTime)
		}
	}
}

func (w *ReporterWorker) report(startTime time.Time) {
	stats := w.monitoring.GetLatest()
	w.log.Info("Relay status",
		"uptime", time.Since(startTime).Round(time.Second).String(),
		"connections", stats.OpenConnections,
		"subjects", stats.ConnectedSubjects,
		"delivered", stats.EventsDelivered,
		"dropped", stats.EventsDropped,
		"rate_per_s", stats.DeliveryRate,
		"ram_mb", stats.AllocMemMb,
		"cpu_pct", stats.ProcessCPUPercent,
	)
}
