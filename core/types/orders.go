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

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"code.vegaprotocol.io/dustflow/libs/num"
)

// Side of an order, the numeric values are the ones used on the wire
// by the deployment tooling: buy is 0 and sell is 1.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// SideFromString accepts "buy", "sell", "0" or "1".
func SideFromString(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "0":
		return SideBuy, nil
	case "sell", "1":
		return SideSell, nil
	default:
		return Side(255), ErrInvalidSide
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	v, err := SideFromString(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type OrderStatus uint8

const (
	OrderStatusOpen OrderStatus = iota
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "open"
	case OrderStatusPartiallyFilled:
		return "partially_filled"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether an order in this status can no longer trade.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "open":
		*s = OrderStatusOpen
	case "partially_filled":
		*s = OrderStatusPartiallyFilled
	case "filled":
		*s = OrderStatusFilled
	case "cancelled":
		*s = OrderStatusCancelled
	default:
		return fmt.Errorf("unknown order status %q", raw)
	}
	return nil
}

// Order is a resting order of a market book.
type Order struct {
	ID              uint64      `json:"id"`
	Market          Address     `json:"market"`
	Trader          Address     `json:"trader"`
	Side            Side        `json:"side"`
	Amount          *num.Uint   `json:"amount"`
	Price           *num.Uint   `json:"price"`
	Remaining       *num.Uint   `json:"remaining"`
	Status          OrderStatus `json:"status"`
	EscrowRemaining *num.Uint   `json:"escrowRemaining"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (o Order) Clone() *Order {
	cpy := o
	cpy.Amount = o.Amount.Clone()
	cpy.Price = o.Price.Clone()
	cpy.Remaining = o.Remaining.Clone()
	cpy.EscrowRemaining = o.EscrowRemaining.Clone()
	return &cpy
}

// Filled returns the size already traded.
func (o Order) Filled() *num.Uint {
	return num.UintZero().Sub(o.Amount, o.Remaining)
}

func (o Order) String() string {
	return fmt.Sprintf(
		"id(%d) market(%s) trader(%s) side(%s) amount(%s) price(%s) remaining(%s) status(%s)",
		o.ID, o.Market.Hex(), o.Trader.Hex(), o.Side, o.Amount, o.Price, o.Remaining, o.Status,
	)
}

// Trade is a single fill between a taker and a resting maker order.
type Trade struct {
	Seq          uint64    `json:"seq"`
	Market       Address   `json:"market"`
	MakerOrderID uint64    `json:"makerOrderId"`
	Maker        Address   `json:"maker"`
	Taker        Address   `json:"taker"`
	TakerSide    Side      `json:"takerSide"`
	Size         *num.Uint `json:"size"`
	Price        *num.Uint `json:"price"`
	QuoteAmount  *num.Uint `json:"quoteAmount"`
	Timestamp    time.Time `json:"timestamp"`
}

// PriceLevel is the aggregated remaining size resting at one price.
type PriceLevel struct {
	Price          *num.Uint `json:"price"`
	NumberOfOrders uint64    `json:"numberOfOrders"`
	Volume         *num.Uint `json:"volume"`
}

type PriceLevels []*PriceLevel
