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

package broker_test

import (
	"context"
	"testing"

	"code.vegaprotocol.io/dustflow/core/broker"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			got := map[string]string{}
			for _, l := range m.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := metrics.NewDefaultConfig()
	cfg.Enabled = true
	cfg.Port = 0
	metrics.Start(ctx, logging.NewTestLogger(), cfg)

	b := getBroker(t)
	b.SubscribeBatch(broker.NewCounter(b.ctx))

	market := types.MustAddress("0x00000000000000000000000000000000000000a1")
	trader := types.MustAddress("0x00000000000000000000000000000000000000b1")
	open := &types.Order{
		ID:        1,
		Market:    market,
		Trader:    trader,
		Side:      types.SideSell,
		Amount:    num.NewUint(100),
		Price:     num.NewUint(2),
		Remaining: num.NewUint(100),
		Status:    types.OrderStatusOpen,
	}
	filled := &types.Order{
		ID:        1,
		Market:    market,
		Trader:    trader,
		Side:      types.SideSell,
		Amount:    num.NewUint(100),
		Price:     num.NewUint(2),
		Remaining: num.NewUint(40),
		Status:    types.OrderStatusPartiallyFilled,
	}
	trade := types.Trade{
		Seq:         1,
		Market:      market,
		Maker:       trader,
		Taker:       trader,
		TakerSide:   types.SideBuy,
		Size:        num.NewUint(60),
		Price:       num.NewUint(2),
		QuoteAmount: num.NewUint(120),
	}

	b.SendBatch([]events.Event{
		events.NewOrderEvent(b.ctx, open),
		events.NewTradeEvent(b.ctx, trade),
		events.NewOrderEvent(b.ctx, filled),
	})

	// only the new order is counted, its fill is not
	assert.Equal(t, float64(1), counterValue(t, "dustflow_orders_total", map[string]string{"market": market.Hex(), "side": "sell"}))
	assert.Equal(t, float64(1), counterValue(t, "dustflow_trades_total", map[string]string{"market": market.Hex()}))
}
