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
)

// GetOrder returns a copy of the order.
func (m *Market) GetOrder(id uint64) (*types.Order, error) {
	o, err := m.order(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// Orders returns a copy of every order ever placed, by id.
func (m *Market) Orders() []*types.Order {
	out := make([]*types.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o.Clone())
	}
	return out
}

// OpenOrders returns the live orders of a side.
func (m *Market) OpenOrders(side types.Side) []*types.Order {
	out := []*types.Order{}
	for _, o := range m.orders {
		if o.Side == side && !o.Status.IsTerminal() {
			out = append(out, o.Clone())
		}
	}
	return out
}

// TotalRemaining is the open interest: the remaining size of every live order.
func (m *Market) TotalRemaining() *num.Uint {
	total := num.UintZero()
	for _, o := range m.orders {
		if !o.Status.IsTerminal() {
			total.Add(total, o.Remaining)
		}
	}
	return total
}

func (m *Market) Depth(side types.Side) types.PriceLevels {
	return m.getSide(side).depth()
}

// BestPrice returns the highest bid or the lowest ask.
func (m *Market) BestPrice(side types.Side) (*num.Uint, error) {
	lvl, ok := m.getSide(side).best()
	if !ok {
		return nil, ErrEmptySide
	}
	return lvl.price.Clone(), nil
}

// BestPriceAndVolume returns the best price of a side and the volume resting at it.
func (m *Market) BestPriceAndVolume(side types.Side) (*num.Uint, *num.Uint, error) {
	lvl, ok := m.getSide(side).best()
	if !ok {
		return nil, nil, ErrEmptySide
	}
	return lvl.price.Clone(), lvl.volume.Clone(), nil
}

// Escrow returns the base and quote amounts currently held for live orders.
func (m *Market) Escrow() (base, quote *num.Uint) {
	return m.escrowBase.Clone(), m.escrowQuote.Clone()
}

// Hash of the book: both sides then the escrow totals.
func (m *Market) Hash() []byte {
	bh, sh := m.buy.Hash(), m.sell.Hash()
	eb, eq := m.escrowBase.Bytes(), m.escrowQuote.Bytes()
	output := make([]byte, 0, len(bh)+len(sh)+64)
	output = append(output, bh...)
	output = append(output, sh...)
	output = append(output, eb[:]...)
	output = append(output, eq[:]...)
	return vgcrypto.Hash(output)
}
