package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRunsJobsUntilCancelled(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	s.Register(Job{Name: "tick", Interval: 10 * time.Millisecond, Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})
	s.Register(Job{Name: "broken", Interval: 10 * time.Millisecond, Fn: func(context.Context) error {
		return errors.New("boom")
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		for _, item := range s.List() {
			if item.Name == "broken" && item.Status == StatusReject {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "broken", items[0].Name)
	assert.Equal(t, "boom", items[0].Message)
	assert.Equal(t, StatusFulfill, items[1].Status)
	assert.NotNil(t, items[1].LastRunAt)
}
