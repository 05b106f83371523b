package usecase

import (
	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/metrics"
	hcdomain "github.com/x-xyz/escrow/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
	met  metrics.Service
}

func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
		met:  metrics.New("healthcheck"),
	}
}

// Check fails when one of the backing stores does not answer in time
func (im *impl) Check(c ctx.Ctx) error {
	defer im.met.BumpTime("check").End()
	if err := im.repo.Ping(c); err != nil {
		im.met.BumpSum("check.err", 1)
		return err
	}
	return nil
}
