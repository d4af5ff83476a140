package irdaicap

import (
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/service"
)

var Module = fx.Module("irdaicap",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
