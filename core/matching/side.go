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

package matching

import (
	"code.vegaprotocol.io/dustflow/core/types"
	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"
	"code.vegaprotocol.io/dustflow/libs/num"

	"github.com/google/btree"
)

// PriceLevel aggregates the remaining size of the live orders at a price.
type PriceLevel struct {
	price  *num.Uint
	volume *num.Uint
	orders uint64
}

func priceLevelLess(a, b *PriceLevel) bool {
	return a.price.LT(b.price)
}

// OrderBookSide is the depth index of one side of the book. Orders are
// not matched through it, it only serves aggregated views.
type OrderBookSide struct {
	side   types.Side
	levels *btree.BTreeG[*PriceLevel]
}

func newSide(side types.Side) *OrderBookSide {
	return &OrderBookSide{
		side:   side,
		levels: btree.NewG(8, priceLevelLess),
	}
}

func (s *OrderBookSide) getPriceLevel(price *num.Uint) *PriceLevel {
	lvl, ok := s.levels.Get(&PriceLevel{price: price})
	if !ok {
		lvl = &PriceLevel{price: price.Clone(), volume: num.UintZero()}
		s.levels.ReplaceOrInsert(lvl)
	}
	return lvl
}

// add volume and orders count at price.
func (s *OrderBookSide) add(price, volume *num.Uint, orders uint64) {
	lvl := s.getPriceLevel(price)
	lvl.volume.Add(lvl.volume, volume)
	lvl.orders += orders
}

// remove volume and orders count at price, the level is dropped once empty.
func (s *OrderBookSide) remove(price, volume *num.Uint, orders uint64) {
	lvl, ok := s.levels.Get(&PriceLevel{price: price})
	if !ok {
		return
	}
	lvl.volume.Sub(lvl.volume, volume)
	lvl.orders -= orders
	if lvl.orders == 0 {
		s.levels.Delete(lvl)
	}
}

// best is the highest bid or the lowest ask.
func (s *OrderBookSide) best() (*PriceLevel, bool) {
	if s.side == types.SideBuy {
		return s.levels.Max()
	}
	return s.levels.Min()
}

// depth returns the levels from the best price outward.
func (s *OrderBookSide) depth() types.PriceLevels {
	out := make(types.PriceLevels, 0, s.levels.Len())
	iter := func(l *PriceLevel) bool {
		out = append(out, &types.PriceLevel{
			Price:          l.price.Clone(),
			NumberOfOrders: l.orders,
			Volume:         l.volume.Clone(),
		})
		return true
	}
	if s.side == types.SideBuy {
		s.levels.Descend(iter)
	} else {
		s.levels.Ascend(iter)
	}
	return out
}

func (s *OrderBookSide) clear() {
	s.levels.Clear(false)
}

// Hash of the levels in ascending price order.
func (s *OrderBookSide) Hash() []byte {
	// 32 bytes price + 32 bytes volume
	output := make([]byte, 0, s.levels.Len()*64)
	s.levels.Ascend(func(l *PriceLevel) bool {
		price := l.price.Bytes()
		volume := l.volume.Bytes()
		output = append(output, price[:]...)
		output = append(output, volume[:]...)
		return true
	})
	return vgcrypto.Hash(output)
}
