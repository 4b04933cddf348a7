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

package processor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	bmocks "code.vegaprotocol.io/dustflow/core/broker/mocks"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	vgcontext "code.vegaprotocol.io/dustflow/libs/context"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = types.MustAddress("0x00000000000000000000000000000000000000a1")
	bob   = types.MustAddress("0x00000000000000000000000000000000000000b2")
	token = types.MustAddress("0x00000000000000000000000000000000000000c0")

	errBoom = errors.New("boom")
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type testProcessor struct {
	*processor.Processor
	token *builtin.ERC20
	clock fixedClock

	mu   sync.Mutex
	evts []events.Event
}

func (tp *testProcessor) events() []events.Event {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return append([]events.Event{}, tp.evts...)
}

func getTestProcessor(t *testing.T) *testProcessor {
	t.Helper()
	return getTestProcessorWithConfig(t, processor.NewDefaultConfig())
}

func getTestProcessorWithConfig(t *testing.T, cfg processor.Config) *testProcessor {
	t.Helper()
	ctrl := gomock.NewController(t)
	journal := state.NewJournal()
	tp := &testProcessor{
		clock: fixedClock{t: time.Unix(1700000000, 0).UTC()},
	}

	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(e events.Event) {
		tp.mu.Lock()
		tp.evts = append(tp.evts, e)
		tp.mu.Unlock()
	})
	broker.EXPECT().SendBatch(gomock.Any()).AnyTimes().Do(func(evts []events.Event) {
		tp.mu.Lock()
		tp.evts = append(tp.evts, evts...)
		tp.mu.Unlock()
	})

	p, err := processor.New(logging.NewTestLogger(), cfg, journal, broker, tp.clock)
	require.NoError(t, err)
	tp.Processor = p
	tp.token = builtin.New(token, assets.Details{Name: "Test", Symbol: "TST", Decimals: 6}, journal, p.Broker())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-p.Done()
	})
	p.Start(ctx)
	return tp
}

func TestSubmit(t *testing.T) {
	t.Run("A committed transaction keeps its effects and flushes its events", testCommittedTx)
	t.Run("A failing transaction reverts every effect and drops its events", testRevertedTx)
	t.Run("A panicking transaction is reverted", testPanickingTx)
	t.Run("Submitting before start fails", testSubmitBeforeStart)
	t.Run("The transaction runs with the transaction context", testTxContext)
	t.Run("A cancelled wait does not cancel the transaction", testCancelledWait)
	t.Run("Transactions are executed one at a time", testSerialExecution)
}

func testCommittedTx(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	r, err := tp.Submit(ctx, "mint", alice, func(ctx context.Context) (interface{}, error) {
		return "done", tp.token.Mint(ctx, alice, num.NewUint(100))
	})
	require.NoError(t, err)
	assert.Equal(t, processor.StatusCommitted, r.Status)
	assert.Equal(t, "done", r.Result)
	assert.Equal(t, 1, r.Events)
	assert.Equal(t, tp.clock.t, r.ExecutedAt)
	assert.Equal(t, "100", tp.token.BalanceOf(alice).String())

	evts := tp.events()
	require.Len(t, evts, 2)
	assert.Equal(t, events.TransferEvent, evts[0].Type())
	assert.Equal(t, r.TxID, evts[0].TxID())
	res, ok := evts[1].(*events.TxResult)
	require.True(t, ok)
	assert.True(t, res.Success())
	assert.Equal(t, "mint", res.Kind())
}

func testRevertedTx(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	_, err := tp.Submit(ctx, "mint", alice, func(ctx context.Context) (interface{}, error) {
		return nil, tp.token.Mint(ctx, alice, num.NewUint(100))
	})
	require.NoError(t, err)

	r, err := tp.Submit(ctx, "transfer", alice, func(ctx context.Context) (interface{}, error) {
		if !tp.token.Transfer(ctx, alice, bob, num.NewUint(60)) {
			return nil, types.ErrTransferFailed
		}
		return nil, errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, processor.StatusReverted, r.Status)
	assert.Equal(t, errBoom.Error(), r.Error)
	assert.Equal(t, 0, r.Events)
	assert.Equal(t, "100", tp.token.BalanceOf(alice).String())
	assert.True(t, tp.token.BalanceOf(bob).IsZero())

	evts := tp.events()
	// mint transfer, mint result, failed result
	require.Len(t, evts, 3)
	res, ok := evts[2].(*events.TxResult)
	require.True(t, ok)
	assert.False(t, res.Success())
	assert.Equal(t, errBoom.Error(), res.Error())
}

func testPanickingTx(t *testing.T) {
	tp := getTestProcessor(t)

	r, err := tp.Submit(context.Background(), "panic", alice, func(ctx context.Context) (interface{}, error) {
		_ = tp.token.Mint(ctx, alice, num.NewUint(5))
		panic("unexpected")
	})
	assert.ErrorIs(t, err, processor.ErrTxPanicked)
	assert.Equal(t, processor.StatusReverted, r.Status)
	assert.True(t, tp.token.TotalSupply().IsZero())
}

func testSubmitBeforeStart(t *testing.T) {
	p, err := processor.New(logging.NewTestLogger(), processor.NewDefaultConfig(), state.NewJournal(), nil, nil)
	require.NoError(t, err)
	_, err = p.Submit(context.Background(), "noop", alice, func(context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, processor.ErrProcessorNotStarted)
}

func testTxContext(t *testing.T) {
	tp := getTestProcessor(t)

	var (
		txID    string
		txTime  time.Time
		caller  [20]byte
		nowInTx time.Time
	)
	r, err := tp.Submit(vgcontext.WithTraceID(context.Background(), "trace"), "noop", bob, func(ctx context.Context) (interface{}, error) {
		txID, _ = vgcontext.TxIDFromContext(ctx)
		txTime, _ = vgcontext.TxTimeFromContext(ctx)
		caller, _ = vgcontext.CallerFromContext(ctx)
		nowInTx = tp.GetTimeNow()
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, r.TxID, txID)
	assert.Equal(t, tp.clock.t, txTime)
	assert.Equal(t, tp.clock.t, nowInTx)
	assert.Equal(t, [20]byte(bob), caller)

	res, ok := tp.events()[0].(*events.TxResult)
	require.True(t, ok)
	assert.Equal(t, "trace", res.TraceID())
}

func testCancelledWait(t *testing.T) {
	tp := getTestProcessor(t)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = tp.Submit(context.Background(), "block", alice, func(context.Context) (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := tp.Submit(ctx, "mint", alice, func(ctx context.Context) (interface{}, error) {
		return nil, tp.token.Mint(ctx, alice, num.NewUint(7))
	})
	assert.ErrorIs(t, err, context.Canceled)
	close(release)

	// the queue may have been picked before the cancelled context was seen.
	assert.Eventually(t, func() bool {
		rcpt, ok := tp.Receipt(r.TxID)
		return !ok || rcpt.Status != processor.StatusPending
	}, time.Second, 5*time.Millisecond)

	rcpt, ok := tp.Receipt(r.TxID)
	if !ok {
		return
	}
	assert.Equal(t, processor.StatusCommitted, rcpt.Status)
	assert.Equal(t, "7", tp.token.BalanceOf(alice).String())
}

func testSerialExecution(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	_, err := tp.Submit(ctx, "mint", alice, func(ctx context.Context) (interface{}, error) {
		return nil, tp.token.Mint(ctx, alice, num.NewUint(1000))
	})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		running int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tp.Submit(ctx, "transfer", alice, func(ctx context.Context) (interface{}, error) {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()
				ok := tp.token.Transfer(ctx, alice, bob, num.NewUint(10))
				mu.Lock()
				running--
				mu.Unlock()
				if !ok {
					return nil, types.ErrTransferFailed
				}
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, "800", tp.token.BalanceOf(alice).String())
	assert.Equal(t, "200", tp.token.BalanceOf(bob).String())
}

func TestReceipts(t *testing.T) {
	t.Run("Receipts can be retrieved by transaction id", func(t *testing.T) {
		tp := getTestProcessor(t)
		r, err := tp.Submit(context.Background(), "noop", alice, func(context.Context) (interface{}, error) {
			return uint64(3), nil
		})
		require.NoError(t, err)

		got, ok := tp.Receipt(r.TxID)
		require.True(t, ok)
		assert.Equal(t, processor.StatusCommitted, got.Status)
		assert.Equal(t, uint64(3), got.Result)

		_, ok = tp.Receipt("unknown")
		assert.False(t, ok)
	})
	t.Run("Old receipts are evicted", func(t *testing.T) {
		cfg := processor.NewDefaultConfig()
		cfg.ReceiptCacheSize = 1
		tp := getTestProcessorWithConfig(t, cfg)
		noop := func(context.Context) (interface{}, error) { return nil, nil }

		first, err := tp.Submit(context.Background(), "noop", alice, noop)
		require.NoError(t, err)
		_, err = tp.Submit(context.Background(), "noop", alice, noop)
		require.NoError(t, err)

		_, ok := tp.Receipt(first.TxID)
		assert.False(t, ok)
	})
	t.Run("A zero sized cache is rejected", func(t *testing.T) {
		cfg := processor.NewDefaultConfig()
		cfg.ReceiptCacheSize = 0
		_, err := processor.New(logging.NewTestLogger(), cfg, state.NewJournal(), nil, nil)
		assert.Error(t, err)
	})
}

func TestView(t *testing.T) {
	tp := getTestProcessor(t)
	_, err := tp.Submit(context.Background(), "mint", alice, func(ctx context.Context) (interface{}, error) {
		return nil, tp.token.Mint(ctx, alice, num.NewUint(42))
	})
	require.NoError(t, err)

	var bal *num.Uint
	require.NoError(t, tp.View(func() error {
		bal = tp.token.BalanceOf(alice)
		return nil
	}))
	assert.Equal(t, "42", bal.String())
	assert.ErrorIs(t, tp.View(func() error { return errBoom }), errBoom)

	ran := false
	tp.Exclusive(func() { ran = true })
	assert.True(t, ran)
}

func TestBufferOutsideTx(t *testing.T) {
	tp := getTestProcessor(t)
	// events sent outside of a transaction are not held.
	require.NoError(t, tp.token.Mint(context.Background(), alice, num.NewUint(1)))
	evts := tp.events()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TransferEvent, evts[0].Type())
}
