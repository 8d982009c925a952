package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAsyncScheduleGeneratorSubmitAndPollToCompletion(t *testing.T) {
	inner := newSchedulerServiceFixture(t, schedulerFixtureConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	async := NewAsyncScheduleGenerator(ctx, inner, 2, zap.NewNop())
	defer async.Stop()

	jobID, err := async.Submit(smallTimetableRequest())
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		result, ok := async.Result(jobID)
		return ok && result.Status == AsyncJobComplete
	}, time.Second, 5*time.Millisecond)

	result, ok := async.Result(jobID)
	require.True(t, ok)
	require.NoError(t, result.Err)
	assert.True(t, result.Response.IsFeasible)
	assert.Len(t, result.Response.Slots, 2)
}

func TestAsyncScheduleGeneratorUnknownJob(t *testing.T) {
	inner := newSchedulerServiceFixture(t, schedulerFixtureConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	async := NewAsyncScheduleGenerator(ctx, inner, 1, zap.NewNop())
	defer async.Stop()

	_, ok := async.Result("never-submitted")
	assert.False(t, ok)
}
