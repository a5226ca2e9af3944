package delaytimer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_RunsAtDeadline(t *testing.T) {
	tm := New(nil)
	done := make(chan struct{})

	tm.Schedule(time.Now().Add(10*time.Millisecond), NewToken(), func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("task did not run")
	}
}

func TestUnschedule_RemovesAtMostOnePendingTask(t *testing.T) {
	tm := New(nil)
	var ran atomic.Int32
	token := NewToken()

	tm.Schedule(time.Now().Add(50*time.Millisecond), token, func() { ran.Add(1) })
	tm.Unschedule(token)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), ran.Load())
}

func TestUnschedule_NoopWhenAbsent(t *testing.T) {
	tm := New(nil)
	tm.Unschedule(NewToken())
}

func TestSchedule_SameTokenMultipleTasksAllRun(t *testing.T) {
	tm := New(nil)
	token := NewToken()
	var ran atomic.Int32

	tm.Schedule(time.Now().Add(5*time.Millisecond), token, func() { ran.Add(1) })
	tm.Schedule(time.Now().Add(10*time.Millisecond), token, func() { ran.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), ran.Load())
}

func TestOnTaskPanic_DoesNotKillWorker(t *testing.T) {
	tm := New(nil)
	var reported atomic.Bool
	tm.OnTaskPanic(func(any) { reported.Store(true) })

	tm.Schedule(time.Now().Add(5*time.Millisecond), NewToken(), func() {
		panic("boom")
	})

	done := make(chan struct{})
	tm.Schedule(time.Now().Add(20*time.Millisecond), NewToken(), func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("worker appears dead after panicking task")
	}
	assert.True(t, reported.Load())
}
