package fiscal

import (
	"github.com/nairabooks/taxcore/internal/fiscal/lock"
	"github.com/nairabooks/taxcore/internal/fiscal/repository"
	"github.com/nairabooks/taxcore/internal/fiscal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fiscal.service",
	lock.Module,
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
