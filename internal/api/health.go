package api

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/finecheck/internal/infra/transport"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ComponentHealth is the health of one dependency.
type ComponentHealth struct {
	Name   string       `json:"name"`
	Status SystemStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus               `json:"system_status"`
	Upstream     transport.HealthStatus     `json:"upstream"`
	Components   map[string]ComponentHealth `json:"components"`
}

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Health(ctx context.Context) error
}

// UpstreamHealth reports the lookup service as seen by the transport.
type UpstreamHealth interface {
	Health() transport.HealthStatus
}

// Monitor aggregates health status from the upstream and optional stores.
type Monitor struct {
	upstream   UpstreamHealth
	components map[string]Pinger
	lastCheck  time.Time
	lastReport HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(upstream UpstreamHealth) *Monitor {
	return &Monitor{
		upstream:   upstream,
		components: make(map[string]Pinger),
	}
}

// Register adds a named dependency. A failing dependency degrades the system.
func (m *Monitor) Register(name string, p Pinger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = p
}

// CheckHealth builds a report, reusing the last one for up to ten seconds.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < 10*time.Second && m.lastReport.SystemStatus != "" {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.components)),
	}

	if m.upstream != nil {
		report.Upstream = m.upstream.Health()
		switch {
		case !report.Upstream.Available:
			report.SystemStatus = StatusCritical
		case report.Upstream.ErrorRate > 0.2:
			report.SystemStatus = StatusDegraded
		}
	}

	for name, p := range m.components {
		c := ComponentHealth{Name: name, Status: StatusHealthy}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := p.Health(pingCtx); err != nil {
			c.Status = StatusDegraded
			c.Error = err.Error()
			if report.SystemStatus == StatusHealthy {
				report.SystemStatus = StatusDegraded
			}
		}
		cancel()
		report.Components[name] = c
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
