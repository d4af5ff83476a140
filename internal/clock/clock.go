package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts "now" so rule validity windows, campaign bonuses and
// cap effectivity can be evaluated against an injected date in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func NewSystemClock() Clock { return systemClock{} }

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
