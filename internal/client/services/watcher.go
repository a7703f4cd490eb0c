package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/taskly/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Pinger is the part of the remote client the watcher needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher pings the server periodically and tracks whether it answered.
// It starts online so the first operation tries the server.
type Watcher struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger
	online   atomic.Bool
	onChange func(Mode)
}

func NewWatcher(p Pinger, interval time.Duration, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	w := &Watcher{pinger: p, interval: interval, log: log}
	w.online.Store(true)
	return w
}

// OnChange registers a callback invoked after every mode switch.
func (w *Watcher) OnChange(fn func(Mode)) {
	w.onChange = fn
}

func (w *Watcher) Online() bool {
	return w.online.Load()
}

func (w *Watcher) Mode() Mode {
	if w.Online() {
		return ModeOnline
	}
	return ModeOffline
}

// Check pings once and updates the mode.
func (w *Watcher) Check(ctx context.Context) Mode {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := w.pinger.Ping(ctx)
	cancel()

	online := err == nil
	if w.online.Swap(online) != online {
		mode := w.Mode()
		w.log.Info(ctx, "switched mode", "mode", mode)
		if w.onChange != nil {
			w.onChange(mode)
		}
	}
	return w.Mode()
}

// Run checks on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
