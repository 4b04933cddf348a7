// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"context"
	"sync"
	"time"

	"code.vegaprotocol.io/dustflow/logging"

	"github.com/fsnotify/fsnotify"
)

const namedLogger = "cfgwatcher"

// Option configures a watcher.
type Option func(w *Watcher)

// Use registers adjustments applied to the configuration each time it is
// loaded from the file, the command line flags for instance.
func Use(fns ...func(*Config) error) Option {
	return func(w *Watcher) {
		w.adjust = append(w.adjust, fns...)
	}
}

// Watcher is looking for updates in the configuration file.
type Watcher struct {
	log  *logging.Logger
	path string

	mu                 sync.Mutex
	cfg                Config
	adjust             []func(*Config) error
	cfgUpdateListeners []listener
	nextID             int
}

type listener struct {
	id int
	fn func(Config)
}

// NewWatcher loads the configuration of home and reloads it every time the
// file changes until ctx is done.
func NewWatcher(ctx context.Context, log *logging.Logger, home string, opts ...Option) (*Watcher, error) {
	watcherlog := log.Named(namedLogger)
	// set this logger to debug level as we want to be notified for any configuration changes at any time
	watcherlog.SetLevel(logging.DebugLevel)
	w := &Watcher{
		log:                watcherlog,
		cfg:                NewDefaultConfig(),
		path:               FilePath(home),
		cfgUpdateListeners: []listener{},
	}
	for _, o := range opts {
		o(w)
	}

	if err := w.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return nil, err
	}

	w.log.Info("config watcher started successfully",
		logging.String("config", w.path))

	go w.watch(ctx, watcher)

	return w, nil
}

// Get return the last update of the configuration.
func (w *Watcher) Get() Config {
	w.mu.Lock()
	conf := w.cfg
	w.mu.Unlock()
	return conf
}

// OnConfigUpdate register a function to be called when the configuration is getting updated.
func (w *Watcher) OnConfigUpdate(fns ...func(Config)) {
	w.OnConfigUpdateWithID(fns...)
}

// OnConfigUpdateWithID registers the listeners and returns their ids, in
// the order of fns, to be used with Unregister.
func (w *Watcher) OnConfigUpdateWithID(fns ...func(Config)) []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]int, 0, len(fns))
	for _, f := range fns {
		w.cfgUpdateListeners = append(w.cfgUpdateListeners, listener{id: w.nextID, fn: f})
		ids = append(ids, w.nextID)
		w.nextID++
	}
	return ids
}

// Unregister removes the listeners with the given ids.
func (w *Watcher) Unregister(ids []int) {
	drop := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.cfgUpdateListeners[:0]
	for _, l := range w.cfgUpdateListeners {
		if _, ok := drop[l.id]; !ok {
			kept = append(kept, l)
		}
	}
	w.cfgUpdateListeners = kept
}

func (w *Watcher) load() error {
	cfg := NewDefaultConfig()
	if err := decodeFile(w.path, &cfg); err != nil {
		return err
	}
	for _, f := range w.adjust {
		if err := f(&cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
	return nil
}

func (w *Watcher) notify() {
	w.mu.Lock()
	cfg := w.cfg
	listeners := append([]listener{}, w.cfgUpdateListeners...)
	w.mu.Unlock()

	for _, l := range listeners {
		l.fn(cfg)
	}
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Rename != fsnotify.Rename {
				continue
			}
			if event.Op&fsnotify.Rename == fsnotify.Rename {
				// vi writes a temporary file and renames it over the original one,
				// the file may not exist yet when the event is received.
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.path); err != nil {
					w.log.Error("unable to watch configuration again", logging.Error(err))
				}
			}
			w.log.Info("configuration updated", logging.String("event", event.Name))
			if err := w.load(); err != nil {
				w.log.Error("unable to load configuration", logging.Error(err))
				continue
			}
			w.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher received error event", logging.Error(err))
		case <-ctx.Done():
			w.log.Debug("config watcher ctx done")
			return
		}
	}
}
