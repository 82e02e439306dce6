package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2024-05-06 "+hhmm)
	return t
}

func TestCronFields(t *testing.T) {
	c, err := parseCron("*/15 9-17 * * 1,3,5")
	require.NoError(t, err)

	assert.True(t, c.match(at("09:30")))  // Monday
	assert.False(t, c.match(at("09:31"))) // not a quarter
	assert.False(t, c.match(at("18:00")))
	assert.False(t, c.match(at("09:30").AddDate(0, 0, 1))) // Tuesday

	for _, bad := range []string{"* * * *", "*/0 * * * *", "5-1 * * * *", "x * * * *"} {
		_, err := parseCron(bad)
		assert.Error(t, err, bad)
	}
}

func TestDueIntervalAndDaily(t *testing.T) {
	every := &entry{interval: 10 * time.Minute}
	assert.True(t, every.due(at("10:00")))
	every.lastRun = at("10:00")
	assert.False(t, every.due(at("10:09")))
	assert.True(t, every.due(at("10:10")))

	daily := &entry{interval: 24 * time.Hour, at: "03:00"}
	assert.False(t, daily.due(at("02:59")))
	assert.True(t, daily.due(at("03:00")))
	daily.lastRun = at("03:00")
	assert.False(t, daily.due(at("03:00").Add(30*time.Second)))
}

func TestRunRejectsMalformedEntries(t *testing.T) {
	s := New()
	noop := func(context.Context) error { return nil }
	assert.Error(t, s.Cron("61").Run(noop))
	assert.Error(t, s.Daily().At("25:00").Run(noop))
	require.NoError(t, s.Daily().At("03:00").Name("prune").Run(noop))
	require.NoError(t, s.Every(time.Minute).Run(noop))

	assert.Equal(t, []string{"prune  [daily at 03:00]", "task-2  [every 1m0s]"}, s.List())
}

func TestTickSkipsOverlappingRuns(t *testing.T) {
	s := New()
	var runs atomic.Int32
	release := make(chan struct{})
	require.NoError(t, s.Every(time.Nanosecond).WithoutOverlapping().Run(func(context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}))

	ctx := context.Background()
	s.tick(ctx, at("10:00"))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.tick(ctx, at("10:01"))
	close(release)
	s.wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
}
