package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/migration"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/observability"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/server"
	"github.com/JackOfPrompt/policy-pulse-commissions/pkg/db"
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
