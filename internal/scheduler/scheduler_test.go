package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veritas-news/veritas/internal/config"
)

func TestIsPeak(t *testing.T) {
	s := New(config.Config{Scheduler: config.SchedulerConfig{Timezone: "UTC"}}, Deps{})

	assert.True(t, s.isPeak(time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)))
	assert.True(t, s.isPeak(time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)))
	assert.True(t, s.isPeak(time.Date(2026, 8, 20, 22, 59, 0, 0, time.UTC)))
	assert.False(t, s.isPeak(time.Date(2026, 8, 20, 23, 0, 0, 0, time.UTC)))
	assert.False(t, s.isPeak(time.Date(2026, 8, 20, 3, 0, 0, 0, time.UTC)))
}

func TestNewBadTimezoneFallsBackToUTC(t *testing.T) {
	s := New(config.Config{Scheduler: config.SchedulerConfig{Timezone: "Mars/Olympus"}}, Deps{})
	assert.Equal(t, time.UTC, s.loc)
}

func TestEveryMinutes(t *testing.T) {
	assert.Equal(t, "@every 15m0s", everyMinutes(15))
	assert.Equal(t, "@every 1m0s", everyMinutes(0), "cadence is floored at one minute")
	assert.Equal(t, "@every 1h0m0s", everyMinutes(60))
}
