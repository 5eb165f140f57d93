package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RelayStats is the snapshot served on /stats and logged by the reporter.
type RelayStats struct {
	OpenConnections   int     `json:"open_connections"`
	ConnectedSubjects int     `json:"connected_subjects"`
	DeliveryRate      float64 `json:"delivery_rate"` // events/s over the last interval
	EventsDelivered   uint64  `json:"events_delivered"`
	EventsDropped     uint64  `json:"events_dropped"`
	SlowConsumerKicks uint64  `json:"slow_consumer_kicks"`

	ProcessCPUPercent float64 `json:"process_cpu_percent"`
	ProcessRSSMb      uint64  `json:"process_rss_mb"`
	AllocMemMb        uint64  `json:"alloc_mem_mb"`
	NumGC             uint32  `json:"num_gc"`
	NumGoroutine      int     `json:"num_goroutine"`
}

// ConnectionCounter reports the registry's current population.
type ConnectionCounter interface {
	Count() int
	Subjects() int
}

// MonitoringManager aggregates relay telemetry. Hot-path callers touch only
// atomic counters; the snapshot is rebuilt on a ticker so reads never
// contend with deliveries.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats RelayStats

	connections ConnectionCounter

	delivered     atomic.Uint64
	dropped       atomic.Uint64
	slowConsumers atomic.Uint64
	intervalCount atomic.Uint64
	lastCheck     time.Time
}

func NewMonitoringManager(log *slog.Logger, connections ConnectionCounter) *MonitoringManager {
	return &MonitoringManager{
		log:         log,
		connections: connections,
		lastCheck:   time.Now(),
	}
}

func (mm *MonitoringManager) IncrDelivered() {
	mm.delivered.Add(1)
	mm.intervalCount.Add(1)
}

func (mm *MonitoringManager) IncrDropped() {
	mm.dropped.Add(1)
}

func (mm *MonitoringManager) IncrSlowConsumerKick() {
	mm.slowConsumers.Add(1)
}

// SetProcessStats is fed by the heartbeat worker, which owns the gopsutil
// handle. Kept out of updateStats so a slow /proc read never blocks the tick.
func (mm *MonitoringManager) SetProcessStats(cpuPercent float64, rssBytes uint64) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.ProcessCPUPercent = cpuPercent
	mm.latestStats.ProcessRSSMb = rssBytes / 1024 / 1024
}

// Listen rebuilds the snapshot every interval until the context ends.
func (mm *MonitoringManager) Listen(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Info("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

func (mm *MonitoringManager) updateStats() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := time.Now()
	duration := now.Sub(mm.lastCheck).Seconds()
	if duration > 0 {
		windowed := mm.intervalCount.Swap(0)
		mm.latestStats.DeliveryRate = float64(windowed) / duration
	}
	mm.lastCheck = now

	mm.latestStats.EventsDelivered = mm.delivered.Load()
	mm.latestStats.EventsDropped = mm.dropped.Load()
	mm.latestStats.SlowConsumerKicks = mm.slowConsumers.Load()

	if mm.connections != nil {
		mm.latestStats.OpenConnections = mm.connections.Count()
		mm.latestStats.ConnectedSubjects = mm.connections.Subjects()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.NumGoroutine = runtime.NumGoroutine()

	mm.log.Debug("Stats updated",
		"open_connections", mm.latestStats.OpenConnections,
		"delivery_rate", mm.latestStats.DeliveryRate,
		"delivered", mm.latestStats.EventsDelivered,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

func (mm *MonitoringManager) GetLatest() RelayStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
