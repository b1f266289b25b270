package healthcheck

import (
	"github.com/x-xyz/settlement/base/ctx"
)

// Pinger probes one backing service
type Pinger interface {
	Name() string
	Ping(c ctx.Ctx) error
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	// Check returns the status of every backing service and the first failure
	Check(c ctx.Ctx) (map[string]string, error)
}
