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
	"time"

	"code.vegaprotocol.io/dustflow/core/broker"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerTst struct {
	*broker.Broker
	ctx   context.Context
	cfunc context.CancelFunc
}

func getBroker(t *testing.T) *brokerTst {
	t.Helper()
	ctx, cfunc := context.WithCancel(context.Background())
	t.Cleanup(cfunc)
	return &brokerTst{
		Broker: broker.New(ctx, logging.NewTestLogger(), broker.NewDefaultConfig()),
		ctx:    ctx,
		cfunc:  cfunc,
	}
}

func TestBroker(t *testing.T) {
	t.Run("Required subscribers receive events in order with sequence numbers", testRequiredSubscriber)
	t.Run("Subscribers only receive the types they asked for", testTypedSubscriber)
	t.Run("Stream subscribers receive batches on their channel", testStreamSubscriber)
	t.Run("Unsubscribed subscribers stop receiving events", testUnsubscribe)
	t.Run("Closed subscribers are removed", testClosedSubscriber)
}

func testRequiredSubscriber(t *testing.T) {
	b := getBroker(t)
	rec := broker.NewRecorder(b.ctx, 0)
	b.Subscribe(rec)

	b.SendBatch([]events.Event{
		events.NewTxResult(b.ctx, "a", nil),
		events.NewTxResult(b.ctx, "b", nil),
	})
	b.Send(events.NewTxResult(b.ctx, "c", nil))

	got := rec.Events()
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, uint64(i+1), e.Sequence())
	}
	assert.Equal(t, "c", got[2].(*events.TxResult).Kind())
}

func testTypedSubscriber(t *testing.T) {
	b := getBroker(t)
	rec := broker.NewRecorder(b.ctx, 0, events.TradeEvent)
	all := broker.NewRecorder(b.ctx, 0, events.All)
	b.SubscribeBatch(rec, all)

	b.Send(events.NewTxResult(b.ctx, "a", nil))
	assert.Len(t, rec.Events(), 0)
	assert.Len(t, all.Events(), 1)
	assert.Len(t, all.Filter(events.TxResultEvent), 1)
}

func testStreamSubscriber(t *testing.T) {
	b := getBroker(t)
	s := broker.NewStream(b.ctx, 1)
	b.Subscribe(s)

	b.Send(events.NewTxResult(b.ctx, "a", nil))
	select {
	case batch := <-s.Recv():
		require.Len(t, batch, 1)
		assert.Equal(t, events.TxResultEvent, batch[0].Type())
	case <-time.After(time.Second):
		t.Fatal("no batch received")
	}
}

func testUnsubscribe(t *testing.T) {
	b := getBroker(t)
	rec := broker.NewRecorder(b.ctx, 0)
	id := b.Subscribe(rec)
	assert.Equal(t, id, rec.ID())

	b.Unsubscribe(id)
	b.Send(events.NewTxResult(b.ctx, "a", nil))
	assert.Len(t, rec.Events(), 0)
}

func testClosedSubscriber(t *testing.T) {
	b := getBroker(t)
	subCtx, cancel := context.WithCancel(b.ctx)
	rec := broker.NewRecorder(subCtx, 0)
	b.Subscribe(rec)
	cancel()

	// wait for the recorder to observe its context
	<-rec.Closed()
	b.Send(events.NewTxResult(b.ctx, "a", nil))
	assert.Len(t, rec.Events(), 0)

	// the key is reused by the next subscriber
	other := broker.NewRecorder(b.ctx, 0)
	assert.Equal(t, rec.ID(), b.Subscribe(other))
}

func TestRecorderIsBounded(t *testing.T) {
	ctx := context.Background()
	rec := broker.NewRecorder(ctx, 2)
	rec.Push(events.NewTxResult(ctx, "a", nil), events.NewTxResult(ctx, "b", nil), events.NewTxResult(ctx, "c", nil))
	got := rec.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].(*events.TxResult).Kind())
	rec.Reset()
	assert.Empty(t, rec.Events())
}
