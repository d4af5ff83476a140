package rule

import (
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/service"
)

var Module = fx.Module("rule",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
