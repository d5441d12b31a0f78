package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker checks the school catalog source reachability.
type CatalogChecker interface {
	HealthCheck(ctx context.Context) error
}

// AdvisorChecker checks the LLM advisor availability.
type AdvisorChecker interface {
	HealthCheck(ctx context.Context) error
}
