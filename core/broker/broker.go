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

package broker

import (
	"context"
	"sync"
	"time"

	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/logging"
)

// Interface is the part of the broker the engines send events through.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks code.vegaprotocol.io/dustflow/core/broker Interface
type Interface interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
}

type Subscriber interface {
	Push(val ...events.Event)
	Skip() <-chan struct{}
	Closed() <-chan struct{}
	C() chan<- []events.Event
	Types() []events.Type
	SetID(id int)
	ID() int
	Ack() bool
}

type subscription struct {
	Subscriber
	required bool
	all      bool
	types    map[events.Type]struct{}
}

func (s *subscription) wants(t events.Type) bool {
	if s.all {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Broker fans events out to subscribers. Required (acking) subscribers
// are pushed to synchronously, the others receive batches on their channel.
type Broker struct {
	log *logging.Logger
	cfg Config
	ctx context.Context

	mu   sync.RWMutex
	subs map[int]*subscription
	keys []int
	seq  uint64
}

func New(ctx context.Context, log *logging.Logger, cfg Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Broker{
		log:  log,
		cfg:  cfg,
		ctx:  ctx,
		subs: map[int]*subscription{},
		keys: []int{},
	}
}

// ReloadConf updates the internal configuration.
func (b *Broker) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
}

func (b *Broker) Send(event events.Event) {
	b.SendBatch([]events.Event{event})
}

// SendBatch sends events in order, each of them gets the next sequence number.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}
	b.mu.Lock()
	for _, e := range evts {
		b.seq++
		e.SetSequenceID(b.seq)
	}
	subs := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	timeout := b.cfg.SendTimeout.Get()
	logEvents := bool(b.cfg.LogEvents)
	b.mu.Unlock()

	if logEvents && b.log.IsDebug() {
		for _, e := range evts {
			b.log.Debug("event sent",
				logging.String("type", e.Type().String()),
				logging.Uint64("seq", e.Sequence()),
				logging.TxID(e.TxID()),
			)
		}
	}

	unsub := []int{}
	for _, sub := range subs {
		filtered := make([]events.Event, 0, len(evts))
		for _, e := range evts {
			if sub.wants(e.Type()) {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		select {
		case <-b.ctx.Done():
			return
		case <-sub.Skip():
			continue
		case <-sub.Closed():
			unsub = append(unsub, sub.ID())
			continue
		default:
		}
		if sub.required {
			sub.Push(filtered...)
			continue
		}
		if rm := b.sendChannelSync(sub, filtered, timeout); rm {
			unsub = append(unsub, sub.ID())
		}
	}
	if len(unsub) != 0 {
		b.mu.Lock()
		b.rmSubs(unsub...)
		b.mu.Unlock()
	}
}

func (b *Broker) sendChannel(sub Subscriber, evts []events.Event, wait time.Duration) {
	timeout := time.NewTimer(wait)
	defer func() {
		// drain the channel if we managed to leave the function before the timer expired
		if !timeout.Stop() {
			<-timeout.C
		}
	}()
	select {
	case <-b.ctx.Done():
		return
	case <-sub.Closed():
		return
	case sub.C() <- evts:
		return
	case <-timeout.C:
		b.log.Warn("dropping events for slow subscriber",
			logging.Int("subscriber", sub.ID()),
			logging.Int("count", len(evts)),
		)
		return
	}
}

func (b *Broker) sendChannelSync(sub Subscriber, evts []events.Event, wait time.Duration) bool {
	select {
	case <-b.ctx.Done():
		return false
	case <-sub.Skip():
		return false
	case <-sub.Closed():
		return true
	case sub.C() <- evts:
		return false
	default:
		go b.sendChannel(sub, evts, wait)
		return false
	}
}

func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	k := b.subscribe(s)
	b.mu.Unlock()
	s.SetID(k)
	return k
}

func (b *Broker) SubscribeBatch(subs ...Subscriber) {
	b.mu.Lock()
	for _, s := range subs {
		k := b.subscribe(s)
		s.SetID(k)
	}
	b.mu.Unlock()
}

func (b *Broker) subscribe(s Subscriber) int {
	k := b.getKey()
	sub := &subscription{
		Subscriber: s,
		required:   s.Ack(),
		types:      map[events.Type]struct{}{},
	}
	types := s.Types()
	if len(types) == 0 {
		sub.all = true
	}
	for _, t := range types {
		if t == events.All {
			sub.all = true
			break
		}
		sub.types[t] = struct{}{}
	}
	b.subs[k] = sub
	return k
}

func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	b.rmSubs(k)
	b.mu.Unlock()
}

func (b *Broker) getKey() int {
	if len(b.keys) > 0 {
		k := b.keys[0]
		b.keys = b.keys[1:] // pop first element
		return k
	}
	return len(b.subs) + 1 // add  1 to avoid zero value
}

func (b *Broker) rmSubs(keys ...int) {
	for _, k := range keys {
		// the keys slice must not hold duplicates
		if _, ok := b.subs[k]; !ok {
			continue
		}
		delete(b.subs, k)
		b.keys = append(b.keys, k)
	}
}
