package integrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context) ([]ReportResult, error) {
	r.runs.Add(1)
	return nil, nil
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	scheduler := NewScheduler(runner, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx, "@every 1s", "UTC")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, runner.runs.Load(), int32(1))
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	scheduler := NewScheduler(&countingRunner{}, zap.NewNop())

	err := scheduler.Start(context.Background(), "not a cron line", "UTC")
	assert.Error(t, err)
}

func TestScheduler_RejectsBadTimezone(t *testing.T) {
	scheduler := NewScheduler(&countingRunner{}, zap.NewNop())

	err := scheduler.Start(context.Background(), "@every 1s", "Mars/Olympus")
	assert.Error(t, err)
}
