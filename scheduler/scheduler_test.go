package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func TestAddTicker_Runs(t *testing.T) {
	s := New(nopLogger())
	defer s.Stop()

	var runs int32
	s.AddTicker("tick", 10*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})

	time.Sleep(60 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2))
}

func TestAddTicker_ReplaceSameName(t *testing.T) {
	s := New(nopLogger())
	defer s.Stop()

	var first, second int32
	s.AddTicker("job", 10*time.Millisecond, func() { atomic.AddInt32(&first, 1) })
	s.AddTicker("job", 10*time.Millisecond, func() { atomic.AddInt32(&second, 1) })

	time.Sleep(50 * time.Millisecond)
	snapshot := atomic.LoadInt32(&first)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, snapshot, atomic.LoadInt32(&first), "replaced task must stop running")
	assert.Greater(t, atomic.LoadInt32(&second), int32(0))
	assert.Equal(t, []string{"job"}, s.Names())
}

func TestAddTicker_PanicRecovered(t *testing.T) {
	s := New(nopLogger())
	defer s.Stop()

	var runs int32
	s.AddTicker("panicky", 10*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		panic("boom")
	})

	time.Sleep(60 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2), "task keeps running after panic")
}

func TestAddDelay_RunsOnce(t *testing.T) {
	s := New(nopLogger())
	defer s.Stop()

	var runs int32
	s.AddDelay("once", 10*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestStop_HaltsTasks(t *testing.T) {
	s := New(nopLogger())

	var runs int32
	s.AddTicker("tick", 10*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	snapshot := atomic.LoadInt32(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, snapshot, atomic.LoadInt32(&runs))
}

func TestNames_Sorted(t *testing.T) {
	s := New(nopLogger())
	defer s.Stop()

	s.AddTicker("zeta", time.Hour, func() {})
	s.AddTicker("alpha", time.Hour, func() {})
	assert.Equal(t, []string{"alpha", "zeta"}, s.Names())
}
