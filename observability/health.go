package observability

import "github.com/kbukum/iockit/component"

// HealthStatus represents the overall health of a service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// ServiceHealth describes the overall health of a service and its components.
type ServiceHealth struct {
	Service    string             `json:"service"`
	Status     HealthStatus       `json:"status"`
	Version    string             `json:"version,omitempty"`
	Generation string             `json:"generation,omitempty"`
	Components []component.Health `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(ch component.Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case component.StatusUnhealthy:
		sh.Status = HealthStatusDown
	case component.StatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// MarkDown sets the overall status to down, e.g. when no generation is active.
func (sh *ServiceHealth) MarkDown() {
	sh.Status = HealthStatusDown
}
