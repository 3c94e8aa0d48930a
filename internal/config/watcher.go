package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Watcher re-reads the config file whenever it changes on disk and hands the
// decoded Config to every open Subscription.
type Watcher struct {
	v   *viper.Viper
	log *zap.Logger

	mu      sync.Mutex
	current Config
	subs    map[uint64]*Subscription
	next    uint64
}

// Subscription is a live registration on a Watcher. After Close returns its
// callback is never invoked again.
type Subscription struct {
	w  *Watcher
	id uint64

	mu     sync.Mutex // serializes fn with Close
	fn     func(Config)
	closed bool
}

// NewWatcher loads the config like Load and, when path is set, starts watching it.
func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		v:       v,
		log:     log,
		current: cfg,
		subs:    make(map[uint64]*Subscription),
	}

	if path != "" {
		v.OnConfigChange(func(e fsnotify.Event) { w.reload(e.Name) })
		v.WatchConfig()
	}

	return w, nil
}

// Current returns the most recently decoded config.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Subscribe registers fn for future changes. fn must not call Close on its own subscription.
func (w *Watcher) Subscribe(fn func(Config)) *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.next++
	s := &Subscription{w: w, id: w.next, fn: fn}
	w.subs[s.id] = s
	return s
}

// Close detaches the subscription, waiting for an in-flight callback to return.
func (s *Subscription) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.w.mu.Lock()
	delete(s.w.subs, s.id)
	s.w.mu.Unlock()
}

func (s *Subscription) deliver(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(cfg)
}

func (w *Watcher) reload(file string) {
	cfg, err := decode(w.v)
	if err != nil {
		// keep serving the previous config
		w.log.Error("config reload failed", zap.String("file", file), zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("file", file))
	w.publish(cfg)
}

func (w *Watcher) publish(cfg Config) {
	w.mu.Lock()
	w.current = cfg
	subs := make([]*Subscription, 0, len(w.subs))
	for _, s := range w.subs {
		subs = append(subs, s)
	}
	w.mu.Unlock()

	for _, s := range subs {
		s.deliver(cfg)
	}
}
