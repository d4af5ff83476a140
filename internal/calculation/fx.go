package calculation

import (
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/calculation/service"
)

var Module = fx.Module("calculation",
	fx.Provide(service.NewService),
)
