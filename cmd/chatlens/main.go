package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/chatlens/chatlens/internal/migration"
	"github.com/chatlens/chatlens/internal/observability"
	"github.com/chatlens/chatlens/internal/server"
	"github.com/chatlens/chatlens/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
