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

package matching_test

import (
	"context"
	"testing"
	"time"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	bmocks "code.vegaprotocol.io/dustflow/core/broker/mocks"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/matching"
	"code.vegaprotocol.io/dustflow/core/matching/mocks"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	marketAddr = types.MustAddress("0x00000000000000000000000000000000000000e1")
	dttAddr    = types.MustAddress("0x00000000000000000000000000000000000000d7")
	usdcAddr   = types.MustAddress("0x00000000000000000000000000000000000000c0")
	seller     = types.MustAddress("0x00000000000000000000000000000000000000a1")
	buyer      = types.MustAddress("0x00000000000000000000000000000000000000b2")
	other      = types.MustAddress("0x00000000000000000000000000000000000000b3")

	initialBalance = num.NewUint(1_000_000000)
)

type testMarket struct {
	*matching.Market
	ctrl    *gomock.Controller
	journal *state.Journal
	base    *builtin.ERC20
	quote   *builtin.ERC20
	now     time.Time
	evts    []events.Event
}

func getTestMarket(t *testing.T, duration time.Duration) *testMarket {
	t.Helper()
	return getTestMarketWithTokens(t, duration, nil, nil)
}

// getTestMarketWithTokens lets a test wrap the ledgers seen by the market.
func getTestMarketWithTokens(t *testing.T, duration time.Duration, wrapBase, wrapQuote func(*builtin.ERC20) assets.Token) *testMarket {
	t.Helper()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	journal := state.NewJournal()

	tm := &testMarket{
		ctrl:    ctrl,
		journal: journal,
		base:    builtin.New(dttAddr, assets.Details{Name: "Dust Test Token", Symbol: "DTT", Decimals: 6}, journal, nil),
		quote:   builtin.New(usdcAddr, assets.Details{Name: "USD Coin", Symbol: "USDC", Decimals: 6}, journal, nil),
		now:     time.Unix(1700000000, 0),
	}
	for _, party := range []types.Address{seller, buyer, other} {
		for _, tok := range []*builtin.ERC20{tm.base, tm.quote} {
			require.NoError(t, tok.Mint(ctx, party, initialBalance))
			require.True(t, tok.Approve(ctx, party, marketAddr, num.MaxUint()))
		}
	}
	journal.Reset()

	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().SendBatch(gomock.Any()).AnyTimes().Do(func(evts []events.Event) {
		tm.evts = append(tm.evts, evts...)
	})
	timeSvc := mocks.NewMockTimeService(ctrl)
	timeSvc.EXPECT().GetTimeNow().AnyTimes().DoAndReturn(func() time.Time { return tm.now })

	var base, quote assets.Token = tm.base, tm.quote
	if wrapBase != nil {
		base = wrapBase(tm.base)
	}
	if wrapQuote != nil {
		quote = wrapQuote(tm.quote)
	}
	record := types.MarketRecord{
		MarketID:      0,
		MarketAddress: marketAddr,
		Config: types.MarketConfig{
			MarketID:           0,
			SettlementDuration: duration,
			CollateralAsset:    dttAddr,
		},
		QuoteAsset: usdcAddr,
		CreatedAt:  tm.now,
	}
	tm.Market = matching.NewMarket(logging.NewTestLogger(), matching.NewDefaultConfig(), record, base, quote, journal, broker, timeSvc)
	return tm
}

func (tm *testMarket) assertBalances(t *testing.T, party types.Address, base, quote uint64) {
	t.Helper()
	assert.Equal(t, num.NewUint(base).String(), tm.base.BalanceOf(party).String(), "base balance of %s", party.Hex())
	assert.Equal(t, num.NewUint(quote).String(), tm.quote.BalanceOf(party).String(), "quote balance of %s", party.Hex())
}

// failingToken fails the n-th settlement call made on it.
type failingToken struct {
	*builtin.ERC20
	failAt int
	calls  int
}

func (f *failingToken) fail() bool {
	f.calls++
	return f.calls == f.failAt
}

func (f *failingToken) Transfer(ctx context.Context, from, to types.Address, amount *num.Uint) bool {
	if f.fail() {
		return false
	}
	return f.ERC20.Transfer(ctx, from, to, amount)
}

func (f *failingToken) TransferFrom(ctx context.Context, spender, owner, recipient types.Address, amount *num.Uint) bool {
	if f.fail() {
		return false
	}
	return f.ERC20.TransferFrom(ctx, spender, owner, recipient, amount)
}

// reentrantToken calls back into the market while pulling funds.
type reentrantToken struct {
	*builtin.ERC20
	market *matching.Market
	err    error
}

func (r *reentrantToken) TransferFrom(ctx context.Context, spender, owner, recipient types.Address, amount *num.Uint) bool {
	if r.market != nil {
		_, r.err = r.market.PutTrade(ctx, owner, types.SideSell, num.NewUint(1), num.NewUint(1))
	}
	return r.ERC20.TransferFrom(ctx, spender, owner, recipient, amount)
}

func TestPutTrade(t *testing.T) {
	t.Run("A sell order escrows the base amount", testPutSellEscrowsBase)
	t.Run("A buy order escrows amount times price of quote", testPutBuyEscrowsQuote)
	t.Run("Order ids are sequential from zero", testSequentialOrderIDs)
	t.Run("Invalid parameters are rejected", testPutInvalidParameters)
	t.Run("A buy whose escrow rounds to zero is rejected", testPutBuyZeroEscrow)
	t.Run("Missing allowance is rejected before any transfer", testPutInsufficientAllowance)
	t.Run("A failed pull leaves no order behind", testPutTransferFailed)
	t.Run("Orders are rejected after the settlement window", testPutAfterExpiry)
	t.Run("A zero settlement duration never expires", testPutNoExpiry)
	t.Run("Token callbacks into the market are rejected", testReentrantCall)
}

func testPutSellEscrowsBase(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	id, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	tm.assertBalances(t, seller, 900_000000, 1_000_000000)
	tm.assertBalances(t, marketAddr, 100_000000, 0)

	o, err := tm.GetOrder(id)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusOpen, o.Status)
	assert.Equal(t, "100000000", o.Remaining.String())
	assert.Equal(t, "100000000", o.EscrowRemaining.String())
	assert.Equal(t, seller, o.Trader)

	base, quote := tm.Escrow()
	assert.Equal(t, "100000000", base.String())
	assert.True(t, quote.IsZero())

	require.Len(t, tm.evts, 1)
	assert.Equal(t, events.OrderEvent, tm.evts[0].Type())
}

func testPutBuyEscrowsQuote(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)

	tm.assertBalances(t, buyer, 1_000_000000, 980_000000)
	tm.assertBalances(t, marketAddr, 0, 20_000000)

	best, err := tm.BestPrice(types.SideBuy)
	require.NoError(t, err)
	assert.Equal(t, "200000", best.String())

	_, err = tm.BestPrice(types.SideSell)
	assert.ErrorIs(t, err, matching.ErrEmptySide)
}

func testSequentialOrderIDs(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	for i := uint64(0); i < 5; i++ {
		id, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10), num.NewUint(1000000))
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}
	// a rejected order does not consume an id
	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.UintZero(), num.NewUint(1000000))
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	id, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10), num.NewUint(1000000))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.Len(t, tm.Orders(), 6)
}

func testPutInvalidParameters(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	cases := []struct {
		name   string
		caller types.Address
		side   types.Side
		amount *num.Uint
		price  *num.Uint
		err    error
	}{
		{"invalid side", seller, types.Side(7), num.NewUint(1), num.NewUint(1), types.ErrInvalidSide},
		{"zero amount", seller, types.SideSell, num.UintZero(), num.NewUint(1), types.ErrInvalidAmount},
		{"zero price", seller, types.SideSell, num.NewUint(1), num.UintZero(), types.ErrInvalidPrice},
		{"zero caller", types.ZeroAddress, types.SideSell, num.NewUint(1), num.NewUint(1), types.ErrInvalidAddress},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := tm.PutTrade(ctx, c.caller, c.side, c.amount, c.price)
			assert.ErrorIs(t, err, c.err)
		})
	}
	assert.Empty(t, tm.Orders())
	assert.Empty(t, tm.evts)
}

func testPutBuyZeroEscrow(t *testing.T) {
	tm := getTestMarket(t, 0)

	// 3 * 100000 / 1e6 floors to zero
	_, err := tm.PutTrade(context.Background(), buyer, types.SideBuy, num.NewUint(3), num.NewUint(100000))
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
	assert.Empty(t, tm.Orders())
}

func testPutInsufficientAllowance(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()
	require.True(t, tm.base.Approve(ctx, seller, marketAddr, num.NewUint(99)))

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100), num.NewUint(200000))
	assert.ErrorIs(t, err, types.ErrInsufficientAllowance)
	tm.assertBalances(t, seller, 1_000_000000, 1_000_000000)
	assert.Empty(t, tm.Orders())
}

func testPutTransferFailed(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	// allowance is fine but the balance is not
	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(2_000_000000), num.NewUint(200000))
	assert.ErrorIs(t, err, types.ErrTransferFailed)
	assert.Empty(t, tm.Orders())
	assert.Empty(t, tm.Depth(types.SideSell))
	base, _ := tm.Escrow()
	assert.True(t, base.IsZero())
	assert.Equal(t, 0, tm.journal.Len())
	assert.Empty(t, tm.evts)
}

func testPutAfterExpiry(t *testing.T) {
	tm := getTestMarket(t, 10*24*time.Hour)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100), num.NewUint(200000))
	require.NoError(t, err)

	tm.now = tm.now.Add(10 * 24 * time.Hour)
	_, err = tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100), num.NewUint(200000))
	assert.ErrorIs(t, err, types.ErrMarketExpired)

	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(100), num.NewUint(200000), []uint64{0})
	assert.ErrorIs(t, err, types.ErrMarketExpired)

	// escrow can still be recovered
	require.NoError(t, tm.CancelTrade(ctx, seller, 0))
	tm.assertBalances(t, seller, 1_000_000000, 1_000_000000)
}

func testPutNoExpiry(t *testing.T) {
	tm := getTestMarket(t, 0)
	tm.now = tm.now.Add(100 * 365 * 24 * time.Hour)

	_, err := tm.PutTrade(context.Background(), seller, types.SideSell, num.NewUint(100), num.NewUint(200000))
	assert.NoError(t, err)
}

func testReentrantCall(t *testing.T) {
	var rt *reentrantToken
	tm := getTestMarketWithTokens(t, 0, func(e *builtin.ERC20) assets.Token {
		rt = &reentrantToken{ERC20: e}
		return rt
	}, nil)
	rt.market = tm.Market

	id, err := tm.PutTrade(context.Background(), seller, types.SideSell, num.NewUint(100), num.NewUint(200000))
	require.NoError(t, err)
	assert.ErrorIs(t, rt.err, types.ErrReentrantCall)

	// only the outer order exists
	assert.Equal(t, uint64(0), id)
	assert.Len(t, tm.Orders(), 1)
}

func TestMatchTrade(t *testing.T) {
	t.Run("A buy taker fully fills a resting sell", testMatchFullFill)
	t.Run("A sell taker fills a resting buy", testMatchSellTaker)
	t.Run("A partial fill keeps the order live", testMatchPartialFill)
	t.Run("Matching stops once the taker amount is filled", testMatchStopsWhenFilled)
	t.Run("Duplicate ids are filled once", testMatchDuplicateIDs)
	t.Run("Same side ids match nothing", testMatchSameSide)
	t.Run("Non crossing orders are skipped", testMatchNonCrossing)
	t.Run("A trader can fill their own order", testMatchOwnOrder)
	t.Run("Unknown ids fail the whole call", testMatchUnknownID)
	t.Run("Terminal orders are skipped", testMatchTerminalOrder)
	t.Run("Missing taker allowance reverts the book", testMatchInsufficientAllowance)
	t.Run("A failed transfer reverts every earlier transfer", testMatchTransferFailureReverts)
	t.Run("Floor residue of a buy escrow is refunded on fill", testMatchRefundsResidue)
	t.Run("Fills paying nothing are skipped", testMatchZeroPaymentSkipped)
}

func testMatchFullFill(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)
	tm.evts = nil

	filled, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(100_000000), num.NewUint(200000), []uint64{0})
	require.NoError(t, err)
	assert.Equal(t, "100000000", filled.String())

	tm.assertBalances(t, seller, 900_000000, 1_020_000000)
	tm.assertBalances(t, buyer, 1_100_000000, 980_000000)
	tm.assertBalances(t, marketAddr, 0, 0)

	o, err := tm.GetOrder(0)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusFilled, o.Status)
	assert.True(t, o.Remaining.IsZero())
	assert.True(t, o.EscrowRemaining.IsZero())
	assert.Empty(t, tm.Depth(types.SideSell))
	assert.True(t, tm.TotalRemaining().IsZero())

	require.Len(t, tm.evts, 2)
	trade, ok := tm.evts[1].(*events.Trade)
	require.True(t, ok)
	assert.Equal(t, uint64(1), trade.Trade().Seq)
	assert.Equal(t, seller, trade.Trade().Maker)
	assert.Equal(t, buyer, trade.Trade().Taker)
	assert.Equal(t, "20000000", trade.Trade().QuoteAmount.String())
}

func testMatchSellTaker(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(50_000000), num.NewUint(400000))
	require.NoError(t, err)

	// the taker asks less than the bid, the bid price is used
	filled, err := tm.MatchTrade(ctx, seller, types.SideSell, num.NewUint(50_000000), num.NewUint(300000), []uint64{0})
	require.NoError(t, err)
	assert.Equal(t, "50000000", filled.String())

	tm.assertBalances(t, seller, 950_000000, 1_020_000000)
	tm.assertBalances(t, buyer, 1_050_000000, 980_000000)
	tm.assertBalances(t, marketAddr, 0, 0)
}

func testMatchPartialFill(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)

	filled, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(40_000000), num.NewUint(250000), []uint64{0})
	require.NoError(t, err)
	assert.Equal(t, "40000000", filled.String())

	o, err := tm.GetOrder(0)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusPartiallyFilled, o.Status)
	assert.Equal(t, "60000000", o.Remaining.String())
	assert.Equal(t, "60000000", o.EscrowRemaining.String())

	depth := tm.Depth(types.SideSell)
	require.Len(t, depth, 1)
	assert.Equal(t, "60000000", depth[0].Volume.String())
	assert.Equal(t, uint64(1), depth[0].NumberOfOrders)
	assert.Len(t, tm.OpenOrders(types.SideSell), 1)

	// paid at the resting price
	tm.assertBalances(t, buyer, 1_040_000000, 992_000000)
	tm.assertBalances(t, marketAddr, 60_000000, 0)
}

func testMatchStopsWhenFilled(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
		require.NoError(t, err)
	}

	// id 42 is never inspected
	filled, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(15_000000), num.NewUint(100000), []uint64{0, 1, 42})
	require.NoError(t, err)
	assert.Equal(t, "15000000", filled.String())

	o0, _ := tm.GetOrder(0)
	o1, _ := tm.GetOrder(1)
	o2, _ := tm.GetOrder(2)
	assert.Equal(t, types.OrderStatusFilled, o0.Status)
	assert.Equal(t, types.OrderStatusPartiallyFilled, o1.Status)
	assert.Equal(t, types.OrderStatusOpen, o2.Status)
	assert.Equal(t, "15000000", tm.TotalRemaining().String())
}

func testMatchDuplicateIDs(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)
	_, err = tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)

	filled, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(30_000000), num.NewUint(100000), []uint64{0, 0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, "20000000", filled.String())
	tm.assertBalances(t, buyer, 1_020_000000, 998_000000)
	tm.assertBalances(t, marketAddr, 0, 0)
}

func testMatchSameSide(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, other, types.SideBuy, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)

	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(10_000000), num.NewUint(100000), []uint64{0})
	assert.ErrorIs(t, err, types.ErrNothingMatched)
}

func testMatchNonCrossing(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(300000))
	require.NoError(t, err)
	_, err = tm.PutTrade(ctx, other, types.SideBuy, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)

	// ask above the buy limit
	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(10_000000), num.NewUint(200000), []uint64{0})
	assert.ErrorIs(t, err, types.ErrNothingMatched)
	// bid below the sell limit
	_, err = tm.MatchTrade(ctx, buyer, types.SideSell, num.NewUint(10_000000), num.NewUint(200000), []uint64{1})
	assert.ErrorIs(t, err, types.ErrNothingMatched)
}

func testMatchOwnOrder(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)

	filled, err := tm.MatchTrade(ctx, seller, types.SideBuy, num.NewUint(10_000000), num.NewUint(100000), []uint64{0})
	require.NoError(t, err)
	assert.Equal(t, "10000000", filled.String())

	o, err := tm.GetOrder(0)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusFilled, o.Status)
	assert.True(t, o.Remaining.IsZero())
	// both legs land on the same account
	tm.assertBalances(t, seller, 1_000_000000, 1_000_000000)
}

func testMatchUnknownID(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)
	hash := tm.Hash()

	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(20_000000), num.NewUint(100000), []uint64{0, 7})
	assert.ErrorIs(t, err, types.ErrOrderNotFound)

	o, _ := tm.GetOrder(0)
	assert.Equal(t, types.OrderStatusOpen, o.Status)
	assert.Equal(t, hash, tm.Hash())
	tm.assertBalances(t, buyer, 1_000_000000, 1_000_000000)
}

func testMatchTerminalOrder(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)
	require.NoError(t, tm.CancelTrade(ctx, seller, 0))

	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(10_000000), num.NewUint(100000), []uint64{0})
	assert.ErrorIs(t, err, types.ErrNothingMatched)
}

func testMatchInsufficientAllowance(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)
	require.True(t, tm.quote.Approve(ctx, buyer, marketAddr, num.NewUint(19_999999)))
	tm.journal.Reset()

	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(100_000000), num.NewUint(200000), []uint64{0})
	assert.ErrorIs(t, err, types.ErrInsufficientAllowance)

	o, _ := tm.GetOrder(0)
	assert.Equal(t, "100000000", o.Remaining.String())
	depth := tm.Depth(types.SideSell)
	require.Len(t, depth, 1)
	assert.Equal(t, "100000000", depth[0].Volume.String())
}

func testMatchTransferFailureReverts(t *testing.T) {
	var ft *failingToken
	tm := getTestMarketWithTokens(t, 0, nil, func(e *builtin.ERC20) assets.Token {
		ft = &failingToken{ERC20: e}
		return ft
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
		require.NoError(t, err)
	}
	tm.evts = nil
	hash := tm.Hash()

	// the third quote payment fails after two fills were settled
	ft.calls, ft.failAt = 0, 3
	_, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(30_000000), num.NewUint(100000), []uint64{0, 1, 2})
	assert.ErrorIs(t, err, types.ErrTransferFailed)

	tm.assertBalances(t, buyer, 1_000_000000, 1_000_000000)
	tm.assertBalances(t, seller, 970_000000, 1_000_000000)
	tm.assertBalances(t, marketAddr, 30_000000, 0)
	assert.Equal(t, hash, tm.Hash())
	for _, o := range tm.Orders() {
		assert.Equal(t, types.OrderStatusOpen, o.Status)
		assert.Equal(t, "10000000", o.Remaining.String())
	}
	assert.Empty(t, tm.evts)

	// the same call succeeds once the token behaves
	ft.failAt = 0
	filled, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(30_000000), num.NewUint(100000), []uint64{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, "30000000", filled.String())
	tm.assertBalances(t, seller, 970_000000, 1_003_000000)
}

func testMatchRefundsResidue(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	// escrow = floor(4 * 750000 / 1e6) = 3
	_, err := tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(4), num.NewUint(750000))
	require.NoError(t, err)
	tm.assertBalances(t, marketAddr, 0, 3)

	// each fill pays floor(2 * 750000 / 1e6) = 1
	for i := 0; i < 2; i++ {
		_, err = tm.MatchTrade(ctx, seller, types.SideSell, num.NewUint(2), num.NewUint(750000), []uint64{0})
		require.NoError(t, err)
	}
	o, _ := tm.GetOrder(0)
	assert.Equal(t, types.OrderStatusFilled, o.Status)
	assert.True(t, o.EscrowRemaining.IsZero())

	tm.assertBalances(t, marketAddr, 0, 0)
	tm.assertBalances(t, buyer, 1_000_000004, 999_999998)
	tm.assertBalances(t, seller, 999_999996, 1_000_000002)
}

func testMatchZeroPaymentSkipped(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	// escrow = floor(3 * 500000 / 1e6) = 1
	_, err := tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(3), num.NewUint(500000))
	require.NoError(t, err)

	// floor(2 * 500000 / 1e6) = 1
	_, err = tm.MatchTrade(ctx, seller, types.SideSell, num.NewUint(2), num.NewUint(500000), []uint64{0})
	require.NoError(t, err)

	// the last unit would pay nothing
	_, err = tm.MatchTrade(ctx, seller, types.SideSell, num.NewUint(1), num.NewUint(500000), []uint64{0})
	assert.ErrorIs(t, err, types.ErrNothingMatched)

	require.NoError(t, tm.CancelTrade(ctx, buyer, 0))
	tm.assertBalances(t, marketAddr, 0, 0)
	tm.assertBalances(t, buyer, 1_000_000002, 999_999999)
	tm.assertBalances(t, seller, 999_999998, 1_000_000001)
}

func TestCancelTrade(t *testing.T) {
	t.Run("Cancel refunds the remaining escrow", testCancelRefunds)
	t.Run("Only the trader can cancel", testCancelUnauthorized)
	t.Run("Terminal orders cannot be cancelled", testCancelTerminal)
	t.Run("Unknown orders cannot be cancelled", testCancelUnknown)
}

func testCancelRefunds(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)
	_, err = tm.MatchTrade(ctx, seller, types.SideSell, num.NewUint(25_000000), num.NewUint(200000), []uint64{0})
	require.NoError(t, err)
	tm.evts = nil

	require.NoError(t, tm.CancelTrade(ctx, buyer, 0))
	tm.assertBalances(t, buyer, 1_025_000000, 995_000000)
	tm.assertBalances(t, marketAddr, 0, 0)

	o, _ := tm.GetOrder(0)
	assert.Equal(t, types.OrderStatusCancelled, o.Status)
	assert.Equal(t, "75000000", o.Remaining.String())
	assert.Empty(t, tm.Depth(types.SideBuy))
	assert.True(t, tm.TotalRemaining().IsZero())

	require.Len(t, tm.evts, 1)
	oe, ok := tm.evts[0].(*events.Order)
	require.True(t, ok)
	assert.Equal(t, types.OrderStatusCancelled, oe.Order().Status)
}

func testCancelUnauthorized(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10), num.NewUint(100000))
	require.NoError(t, err)
	assert.ErrorIs(t, tm.CancelTrade(ctx, buyer, 0), types.ErrUnauthorized)
}

func testCancelTerminal(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(100000))
	require.NoError(t, err)
	require.NoError(t, tm.CancelTrade(ctx, seller, 0))
	assert.ErrorIs(t, tm.CancelTrade(ctx, seller, 0), types.ErrOrderNotCancellable)
}

func testCancelUnknown(t *testing.T) {
	tm := getTestMarket(t, 0)
	assert.ErrorIs(t, tm.CancelTrade(context.Background(), seller, 0), types.ErrOrderNotFound)
}

func TestDepth(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	for _, p := range []uint64{300000, 100000, 200000, 100000} {
		_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(10_000000), num.NewUint(p))
		require.NoError(t, err)
		_, err = tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(10_000000), num.NewUint(p/10))
		require.NoError(t, err)
	}

	asks := tm.Depth(types.SideSell)
	require.Len(t, asks, 3)
	assert.Equal(t, "100000", asks[0].Price.String())
	assert.Equal(t, uint64(2), asks[0].NumberOfOrders)
	assert.Equal(t, "20000000", asks[0].Volume.String())
	assert.Equal(t, "300000", asks[2].Price.String())

	bids := tm.Depth(types.SideBuy)
	require.Len(t, bids, 3)
	assert.Equal(t, "30000", bids[0].Price.String())
	assert.Equal(t, "10000", bids[2].Price.String())

	price, volume, err := tm.BestPriceAndVolume(types.SideSell)
	require.NoError(t, err)
	assert.Equal(t, "100000", price.String())
	assert.Equal(t, "20000000", volume.String())
}

func TestConservation(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()
	total := num.UintZero().Mul(initialBalance, num.NewUint(3))

	steps := []func() error{
		func() error {
			_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(33_333333), num.NewUint(123457))
			return err
		},
		func() error {
			_, err := tm.PutTrade(ctx, other, types.SideBuy, num.NewUint(77_777777), num.NewUint(98765))
			return err
		},
		func() error {
			_, err := tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(11_111111), num.NewUint(200000), []uint64{0})
			return err
		},
		func() error {
			_, err := tm.MatchTrade(ctx, seller, types.SideSell, num.NewUint(55_555555), num.NewUint(90000), []uint64{1, 0})
			return err
		},
		func() error { return tm.CancelTrade(ctx, other, 1) },
		func() error { return tm.CancelTrade(ctx, seller, 0) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		base, quote := tm.Escrow()
		assert.Equal(t, base.String(), tm.base.BalanceOf(marketAddr).String(), "step %d", i)
		assert.Equal(t, quote.String(), tm.quote.BalanceOf(marketAddr).String(), "step %d", i)

		sumBase := num.Sum(tm.base.BalanceOf(seller), tm.base.BalanceOf(buyer), tm.base.BalanceOf(other), tm.base.BalanceOf(marketAddr))
		sumQuote := num.Sum(tm.quote.BalanceOf(seller), tm.quote.BalanceOf(buyer), tm.quote.BalanceOf(other), tm.quote.BalanceOf(marketAddr))
		assert.Equal(t, total.String(), sumBase.String(), "step %d", i)
		assert.Equal(t, total.String(), sumQuote.String(), "step %d", i)

		for _, o := range tm.Orders() {
			assert.True(t, o.Remaining.LTE(o.Amount))
			assert.Equal(t, o.Status == types.OrderStatusFilled, o.Remaining.IsZero() && o.Status != types.OrderStatusCancelled)
		}
	}
	tm.assertBalances(t, marketAddr, 0, 0)
}

func TestSnapshot(t *testing.T) {
	tm := getTestMarket(t, 0)
	ctx := context.Background()

	_, err := tm.PutTrade(ctx, seller, types.SideSell, num.NewUint(100_000000), num.NewUint(200000))
	require.NoError(t, err)
	_, err = tm.PutTrade(ctx, buyer, types.SideBuy, num.NewUint(10_000000), num.NewUint(150000))
	require.NoError(t, err)
	_, err = tm.MatchTrade(ctx, buyer, types.SideBuy, num.NewUint(30_000000), num.NewUint(200000), []uint64{0})
	require.NoError(t, err)

	data, err := tm.GetState()
	require.NoError(t, err)

	restored := getTestMarket(t, 0)
	require.NoError(t, restored.LoadState(ctx, data))
	assert.Equal(t, tm.Hash(), restored.Hash())
	assert.Equal(t, tm.Namespace(), restored.Namespace())
	assert.Equal(t, tm.TotalRemaining().String(), restored.TotalRemaining().String())
	assert.Equal(t, tm.Depth(types.SideSell), restored.Depth(types.SideSell))

	// new ids continue after the restored ones
	id, err := restored.PutTrade(ctx, seller, types.SideSell, num.NewUint(1_000000), num.NewUint(200000))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}
