package compliance

import (
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/compliance/service"
)

var Module = fx.Module("compliance",
	fx.Provide(service.NewService),
)
