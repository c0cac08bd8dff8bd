package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) CheckAndCreateAlerts(context.Context) (int, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestAlertScheduler_SweepsImmediatelyOnStart(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewAlertScheduler(sweeper, time.Hour, zap.NewNop())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestAlertScheduler_SweepsOnInterval(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewAlertScheduler(sweeper, 20*time.Millisecond, zap.NewNop())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestAlertScheduler_StopWaitsForLoop(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewAlertScheduler(sweeper, 10*time.Millisecond, zap.NewNop())

	s.Start()
	s.Stop()

	settled := sweeper.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, sweeper.calls.Load())
}

func TestAlertScheduler_SurvivesSweepErrors(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("database down")}
	s := NewAlertScheduler(sweeper, 20*time.Millisecond, zap.NewNop())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestAlertScheduler_StartTwiceIsNoOp(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewAlertScheduler(sweeper, time.Hour, zap.NewNop())

	s.Start()
	s.Start()
	s.Stop()

	// a second Stop on a stopped scheduler must not panic
	s.Stop()
}
