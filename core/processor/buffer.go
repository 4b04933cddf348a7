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

package processor

import (
	"sync"

	"code.vegaprotocol.io/dustflow/core/events"
)

// Buffer is the broker handed to the engines. While a transaction runs
// events are held until the transaction commits, outside of a transaction
// they go straight to the underlying broker.
type Buffer struct {
	mu      sync.Mutex
	broker  Broker
	holding bool
	evts    []events.Event
}

func NewBuffer(broker Broker) *Buffer {
	return &Buffer{
		broker: broker,
	}
}

func (b *Buffer) Send(event events.Event) {
	b.SendBatch([]events.Event{event})
}

func (b *Buffer) SendBatch(evts []events.Event) {
	b.mu.Lock()
	if b.holding {
		b.evts = append(b.evts, evts...)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.broker.SendBatch(evts)
}

func (b *Buffer) hold() {
	b.mu.Lock()
	b.holding = true
	b.evts = nil
	b.mu.Unlock()
}

// release stops holding and returns what was collected.
func (b *Buffer) release() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	evts := b.evts
	b.holding = false
	b.evts = nil
	return evts
}
