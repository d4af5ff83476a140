package report

import (
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report/service"
)

var Module = fx.Module("report",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
