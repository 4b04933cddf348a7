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

package events

import (
	"context"
	"fmt"
	"strings"

	vgcontext "code.vegaprotocol.io/dustflow/libs/context"
)

type Type int

const (
	// All event type -> used by subscribers to just receive all events, has no actual corresponding event payload.
	All Type = iota
	MarketConfigUpdatedEvent
	GovernanceUpdatedEvent
	MarketCreatedEvent
	OrderEvent
	TradeEvent
	VaultInitializedEvent
	DustMintedEvent
	DustRedeemedEvent
	YieldClaimedEvent
	TransferEvent
	TxResultEvent
)

var eventStrings = map[Type]string{
	All:                      "ALL",
	MarketConfigUpdatedEvent: "MarketConfigUpdated",
	GovernanceUpdatedEvent:   "GovernanceUpdated",
	MarketCreatedEvent:       "MarketCreated",
	OrderEvent:               "Order",
	TradeEvent:               "Trade",
	VaultInitializedEvent:    "VaultInitialized",
	DustMintedEvent:          "DustMinted",
	DustRedeemedEvent:        "DustRedeemed",
	YieldClaimedEvent:        "YieldClaimed",
	TransferEvent:            "Transfer",
	TxResultEvent:            "TxResult",
}

type Event interface {
	Type() Type
	Context() context.Context
	TraceID() string
	TxID() string
	Sequence() uint64
	SetSequenceID(s uint64)
}

type marketFilterable interface {
	Event
	MarketAddress() string
}

type partyFilterable interface {
	Event
	IsParty(addr string) bool
}

type Base struct {
	ctx     context.Context
	traceID string
	txID    string
	seq     uint64
	et      Type
}

// A base event holds no data, so the constructor will not be called directly.
func newBase(ctx context.Context, t Type) *Base {
	ctx, tID := vgcontext.TraceIDFromContext(ctx)
	txID, _ := vgcontext.TxIDFromContext(ctx)
	return &Base{
		ctx:     ctx,
		traceID: tID,
		txID:    txID,
		et:      t,
	}
}

// TraceID returns the... traceID obviously.
func (b Base) TraceID() string {
	return b.traceID
}

func (b Base) TxID() string {
	return b.txID
}

func (b *Base) SetSequenceID(s uint64) {
	// sequence ID can only be set once
	if b.seq != 0 {
		return
	}
	b.seq = s
}

// Sequence returns event sequence number.
func (b Base) Sequence() uint64 {
	return b.seq
}

// Context returns context.
func (b Base) Context() context.Context {
	return b.ctx
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}

func (b Base) eventID() string {
	return fmt.Sprintf("%s-%d", b.txID, b.seq)
}

// String get string representation of event type.
func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}

// TryFromString tries to parse a raw string into an event type, false indicates that.
func TryFromString(s string) (*Type, bool) {
	for k, v := range eventStrings {
		if strings.EqualFold(s, v) {
			return &k, true
		}
	}
	return nil, false
}

func GetMarketFilter(market string) func(Event) bool {
	return func(e Event) bool {
		me, ok := e.(marketFilterable)
		if !ok {
			return false
		}
		return strings.EqualFold(me.MarketAddress(), market)
	}
}

func GetPartyFilter(party string) func(Event) bool {
	return func(e Event) bool {
		pe, ok := e.(partyFilterable)
		if !ok {
			return false
		}
		return pe.IsParty(party)
	}
}
