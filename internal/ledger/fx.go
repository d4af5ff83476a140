package ledger

import (
	"go.uber.org/fx"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/service"
)

var Module = fx.Module("ledger",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
