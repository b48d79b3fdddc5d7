package domain

import "time"

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "Healthy"
	HealthStatusUnhealthy HealthStatus = "Unhealthy"
)

type HealthEntry struct {
	Status   HealthStatus
	Duration time.Duration
	Err      error
}

type HealthReport struct {
	Status        HealthStatus
	TotalDuration time.Duration
	Entries       map[string]HealthEntry
}

func (r *HealthReport) IsHealthy() bool {
	return r.Status == HealthStatusHealthy
}
