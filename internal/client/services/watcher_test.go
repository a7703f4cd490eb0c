package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakyPinger struct {
	fail  atomic.Bool
	pings atomic.Int32
}

func (p *flakyPinger) Ping(ctx context.Context) error {
	p.pings.Add(1)
	if p.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestWatcher_SwitchesModes(t *testing.T) {
	p := &flakyPinger{}
	w := NewWatcher(p, time.Hour, nil)
	var changes []Mode
	w.OnChange(func(m Mode) { changes = append(changes, m) })

	assert.True(t, w.Online())
	assert.Equal(t, ModeOnline, w.Check(context.Background()))
	assert.Empty(t, changes)

	p.fail.Store(true)
	assert.Equal(t, ModeOffline, w.Check(context.Background()))
	assert.False(t, w.Online())
	assert.Equal(t, ModeOffline, w.Check(context.Background()))

	p.fail.Store(false)
	w.Check(context.Background())
	assert.Equal(t, []Mode{ModeOffline, ModeOnline}, changes)
}

func TestWatcher_RunStopsWithContext(t *testing.T) {
	p := &flakyPinger{}
	w := NewWatcher(p, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.pings.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
