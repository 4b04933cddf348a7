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
	"strings"

	"code.vegaprotocol.io/dustflow/core/types"
)

type MarketCreated struct {
	*Base
	r types.MarketRecord
}

func NewMarketCreatedEvent(ctx context.Context, r types.MarketRecord) *MarketCreated {
	return &MarketCreated{
		Base: newBase(ctx, MarketCreatedEvent),
		r:    r,
	}
}

func (m MarketCreated) MarketAddress() string {
	return m.r.MarketAddress.Hex()
}

func (m MarketCreated) Record() types.MarketRecord {
	return m.r
}

type Order struct {
	*Base
	o *types.Order
}

// NewOrderEvent is sent on creation, fill and cancellation, the
// order is copied so later book mutations do not leak into the event.
func NewOrderEvent(ctx context.Context, o *types.Order) *Order {
	return &Order{
		Base: newBase(ctx, OrderEvent),
		o:    o.Clone(),
	}
}

func (o Order) IsParty(addr string) bool {
	return strings.EqualFold(o.o.Trader.Hex(), addr)
}

func (o Order) MarketAddress() string {
	return o.o.Market.Hex()
}

func (o *Order) Order() *types.Order {
	return o.o
}

type Trade struct {
	*Base
	t types.Trade
}

func NewTradeEvent(ctx context.Context, t types.Trade) *Trade {
	return &Trade{
		Base: newBase(ctx, TradeEvent),
		t:    t,
	}
}

func (t Trade) IsParty(addr string) bool {
	return strings.EqualFold(t.t.Maker.Hex(), addr) || strings.EqualFold(t.t.Taker.Hex(), addr)
}

func (t Trade) MarketAddress() string {
	return t.t.Market.Hex()
}

func (t Trade) Trade() types.Trade {
	return t.t
}
