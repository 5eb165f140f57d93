package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/destinyy00/skillswap/observability"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples the server's own process (CPU, RSS) and feeds the
// monitoring manager. Runs under the supervisor so a failed /proc read cycle
// gets restarted rather than silencing the stats forever.
type HeartbeatWorker struct {
	log        *slog.Logger
	interval   time.Duration
	monitoring *observability.MonitoringManager
}

func NewHeartbeatWorker(
	log *slog.Logger,
	interval time.Duration,
	monitoring *observability.MonitoringManager,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:        log,
		interval:   interval,
		monitoring: monitoring,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.monitoring.SetProcessStats(cpu, rss)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory and CPU) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
