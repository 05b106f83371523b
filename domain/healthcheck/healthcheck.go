package healthcheck

import (
	"github.com/x-xyz/escrow/base/ctx"
)

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(c ctx.Ctx) error
}

// HealthCheckRepo pings every backing store the service was started with
type HealthCheckRepo interface {
	Ping(c ctx.Ctx) error
}
