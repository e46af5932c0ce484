package taxprofile

import (
	"github.com/nairabooks/taxcore/internal/taxprofile/repository"
	"github.com/nairabooks/taxcore/internal/taxprofile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxprofile.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
