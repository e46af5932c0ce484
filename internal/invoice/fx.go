package invoice

import (
	"github.com/nairabooks/taxcore/internal/invoice/repository"
	"github.com/nairabooks/taxcore/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
