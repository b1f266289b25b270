package usecase

import (
	"time"

	"github.com/x-xyz/settlement/base/ctx"
	hcdomain "github.com/x-xyz/settlement/domain/healthcheck"
)

const pingTimeout = 2 * time.Second

type impl struct {
	pingers []hcdomain.Pinger
}

func New(pingers ...hcdomain.Pinger) hcdomain.HealthCheckUsecase {
	return &impl{
		pingers: pingers,
	}
}

func (im *impl) Check(c ctx.Ctx) (map[string]string, error) {
	res := make(map[string]string, len(im.pingers))
	var first error
	for _, p := range im.pingers {
		pctx, cancel := ctx.WithTimeout(c, pingTimeout)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			res[p.Name()] = err.Error()
			if first == nil {
				first = err
			}
			continue
		}
		res[p.Name()] = "ok"
	}
	return res, first
}
