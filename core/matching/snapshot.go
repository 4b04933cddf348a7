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
	"context"
	"encoding/json"
	"fmt"

	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
)

type marketState struct {
	Orders      []*types.Order `json:"orders"`
	TradeSeq    uint64         `json:"tradeSeq"`
	EscrowBase  *num.Uint      `json:"escrowBase"`
	EscrowQuote *num.Uint      `json:"escrowQuote"`
}

func (m *Market) Namespace() string {
	return fmt.Sprintf("market.%s", m.Address().Hex())
}

func (m *Market) GetState() ([]byte, error) {
	return json.Marshal(marketState{
		Orders:      m.orders,
		TradeSeq:    m.tradeSeq,
		EscrowBase:  m.escrowBase,
		EscrowQuote: m.escrowQuote,
	})
}

// LoadState restores the orders and rebuilds the depth from the live ones.
func (m *Market) LoadState(_ context.Context, data []byte) error {
	var st marketState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	for i, o := range st.Orders {
		if o.ID != uint64(i) {
			return fmt.Errorf("order %d stored at position %d", o.ID, i)
		}
	}
	m.orders = st.Orders
	if m.orders == nil {
		m.orders = []*types.Order{}
	}
	m.tradeSeq = st.TradeSeq
	m.escrowBase = num.UintZero()
	if st.EscrowBase != nil {
		m.escrowBase = st.EscrowBase
	}
	m.escrowQuote = num.UintZero()
	if st.EscrowQuote != nil {
		m.escrowQuote = st.EscrowQuote
	}

	m.buy.clear()
	m.sell.clear()
	for _, o := range m.orders {
		if !o.Status.IsTerminal() {
			m.getSide(o.Side).add(o.Price, o.Remaining, 1)
		}
	}
	return nil
}
