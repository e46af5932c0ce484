package vat

import (
	"github.com/nairabooks/taxcore/internal/vat/repository"
	"github.com/nairabooks/taxcore/internal/vat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vat.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
