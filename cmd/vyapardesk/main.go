package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/config"
	"github.com/vyapardesk/vyapardesk/internal/migration"
	"github.com/vyapardesk/vyapardesk/internal/observability"
	"github.com/vyapardesk/vyapardesk/internal/server"
	"github.com/vyapardesk/vyapardesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
