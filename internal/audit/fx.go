package audit

import (
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
