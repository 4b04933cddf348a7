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

	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/metrics"
)

type base struct {
	id    int
	types []events.Type
	skip  chan struct{}
	done  chan struct{}
}

func newBase(ctx context.Context, types ...events.Type) base {
	b := base{
		types: types,
		skip:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go func() {
		<-ctx.Done()
		close(b.done)
	}()
	return b
}

func (b *base) SetID(id int)            { b.id = id }
func (b *base) ID() int                 { return b.id }
func (b *base) Types() []events.Type    { return b.types }
func (b *base) Skip() <-chan struct{}   { return b.skip }
func (b *base) Closed() <-chan struct{} { return b.done }

// Recorder keeps the last events it received in memory.
type Recorder struct {
	base
	mu     sync.Mutex
	max    int
	events []events.Event
}

// NewRecorder records up to max events of the given types, all types if none.
func NewRecorder(ctx context.Context, max int, types ...events.Type) *Recorder {
	return &Recorder{
		base: newBase(ctx, types...),
		max:  max,
	}
}

func (r *Recorder) Ack() bool { return true }

func (r *Recorder) C() chan<- []events.Event { return nil }

func (r *Recorder) Push(evts ...events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	if r.max > 0 && len(r.events) > r.max {
		r.events = append([]events.Event{}, r.events[len(r.events)-r.max:]...)
	}
}

func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event{}, r.events...)
}

// Filter returns the recorded events of type t.
func (r *Recorder) Filter(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []events.Event{}
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Stream receives event batches on a buffered channel.
type Stream struct {
	base
	ch chan []events.Event
}

func NewStream(ctx context.Context, buf int, types ...events.Type) *Stream {
	return &Stream{
		base: newBase(ctx, types...),
		ch:   make(chan []events.Event, buf),
	}
}

func (s *Stream) Ack() bool { return false }

func (s *Stream) C() chan<- []events.Event { return s.ch }

func (s *Stream) Recv() <-chan []events.Event { return s.ch }

func (s *Stream) Push(evts ...events.Event) {
	s.ch <- evts
}

// Counter feeds the order and trade counters of the metrics.
type Counter struct {
	base
}

func NewCounter(ctx context.Context) *Counter {
	return &Counter{
		base: newBase(ctx, events.OrderEvent, events.TradeEvent),
	}
}

func (c *Counter) Ack() bool { return true }

func (c *Counter) C() chan<- []events.Event { return nil }

func (c *Counter) Push(evts ...events.Event) {
	for _, e := range evts {
		switch ev := e.(type) {
		case *events.Order:
			// only a new order is open with nothing filled
			o := ev.Order()
			if o.Status == types.OrderStatusOpen && o.Remaining.EQ(o.Amount) {
				metrics.OrderCounterInc(ev.MarketAddress(), o.Side.String())
			}
		case *events.Trade:
			metrics.TradeCounterAdd(1, ev.MarketAddress())
		}
	}
}
