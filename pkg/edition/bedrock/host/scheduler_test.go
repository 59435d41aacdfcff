package host

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickSchedulerDelay(t *testing.T) {
	s := NewTickScheduler(logr.Discard())
	var ran []string
	s.ScheduleDelayed(2, func() { ran = append(ran, "two") })
	s.ScheduleDelayed(1, func() { ran = append(ran, "one") })
	s.ScheduleDelayed(0, func() { ran = append(ran, "zero") })
	require.Equal(t, 3, s.Pending())

	s.Tick()
	assert.Equal(t, []string{"one", "zero"}, ran)
	assert.Equal(t, 1, s.Pending())

	s.Tick()
	assert.Equal(t, []string{"one", "zero", "two"}, ran)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, uint64(2), s.Current())
}

func TestTickSchedulerNested(t *testing.T) {
	s := NewTickScheduler(logr.Discard())
	var ticks []uint64
	s.ScheduleDelayed(1, func() {
		ticks = append(ticks, s.Current())
		s.ScheduleDelayed(1, func() { ticks = append(ticks, s.Current()) })
	})
	s.Tick()
	s.Tick()
	s.Tick()
	assert.Equal(t, []uint64{1, 2}, ticks)
}

func TestTickSchedulerRecoversPanic(t *testing.T) {
	s := NewTickScheduler(logr.Discard())
	ran := false
	s.ScheduleDelayed(1, func() { panic("boom") })
	s.ScheduleDelayed(1, func() { ran = true })
	assert.NotPanics(t, s.Tick)
	assert.True(t, ran)
}

func TestTickSchedulerRun(t *testing.T) {
	s := NewTickScheduler(logr.Discard())
	done := make(chan struct{})
	s.ScheduleDelayed(3, func() { close(done) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, time.Millisecond)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}
	assert.GreaterOrEqual(t, s.Current(), uint64(3))
}

func TestTickSchedulerRunDefaultInterval(t *testing.T) {
	s := NewTickScheduler(logr.Discard())
	done := make(chan struct{})
	s.ScheduleDelayed(2, func() { close(done) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := time.Now()
	go s.Run(ctx, 0)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*TickInterval)
}

func TestPacketEvents(t *testing.T) {
	pk := &packet.PlayStatus{Status: packet.PlayStatusLoginSuccess}

	send := NewPacketSendEvent(nil, pk)
	assert.Same(t, pk, send.Packet())
	assert.False(t, send.Cancelled())
	send.SetCancelled(true)
	assert.True(t, send.Cancelled())

	recv := NewPacketReceiveEvent(nil, pk)
	assert.Same(t, pk, recv.Packet())
	assert.Nil(t, recv.Session())
	recv.SetCancelled(true)
	assert.True(t, recv.Cancelled())
}
