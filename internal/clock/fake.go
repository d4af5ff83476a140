package clock

import "time"

// FakeClock pins Now to a fixed instant so validity windows, campaign
// bonuses and cap effectivity resolve the same on every run.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// AdvanceTo jumps the clock to an absolute instant, e.g. past a rule's
// valid_to or a campaign's window end.
func (c *FakeClock) AdvanceTo(t time.Time) {
	c.now = t.UTC()
}
