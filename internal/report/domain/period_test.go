package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuarterOf(t *testing.T) {
	cases := []struct {
		ts   time.Time
		from time.Time
		to   time.Time
	}{
		{
			ts:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
			from: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ts:   time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
			from: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ts:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			from: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ts:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			from: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		p := QuarterOf(tc.ts)
		assert.Equal(t, tc.from, p.From, "from for %s", tc.ts)
		assert.Equal(t, tc.to, p.To, "to for %s", tc.ts)
	}
}
