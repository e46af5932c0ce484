package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/nairabooks/taxcore/internal/clock"
	"github.com/nairabooks/taxcore/internal/config"
	"github.com/nairabooks/taxcore/internal/migration"
	"github.com/nairabooks/taxcore/internal/observability"
	"github.com/nairabooks/taxcore/internal/server"
	"github.com/nairabooks/taxcore/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema and domains; server.Module pulls in the domain modules.
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
