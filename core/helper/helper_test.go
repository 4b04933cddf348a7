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

package helper_test

import (
	"context"
	"testing"
	"time"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	bmocks "code.vegaprotocol.io/dustflow/core/broker/mocks"
	"code.vegaprotocol.io/dustflow/core/collateral"
	"code.vegaprotocol.io/dustflow/core/governance"
	"code.vegaprotocol.io/dustflow/core/helper"
	"code.vegaprotocol.io/dustflow/core/markets"
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
	owner       = types.MustAddress("0x0000000000000000000000000000000000000001")
	stranger    = types.MustAddress("0x0000000000000000000000000000000000000002")
	alice       = types.MustAddress("0x00000000000000000000000000000000000000a1")
	bob         = types.MustAddress("0x00000000000000000000000000000000000000b2")
	usdc        = types.MustAddress("0x00000000000000000000000000000000000000c0")
	dtt         = types.MustAddress("0x00000000000000000000000000000000000000d7")
	factoryAddr = types.MustAddress("0x00000000000000000000000000000000000000fa")
	vaultAddr   = types.MustAddress("0x00000000000000000000000000000000000000e0")
)

type testHelper struct {
	*helper.Helper
	gov     *governance.Engine
	factory *markets.Factory
	vault   *collateral.Vault
	usdc    *builtin.ERC20
	dtt     *builtin.ERC20
	now     time.Time
}

func getTestHelper(t *testing.T) *testHelper {
	t.Helper()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	log := logging.NewTestLogger()
	journal := state.NewJournal()
	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes()
	broker.EXPECT().SendBatch(gomock.Any()).AnyTimes()

	th := &testHelper{
		usdc: builtin.New(usdc, assets.Details{Symbol: "USDC", Decimals: 6}, journal, nil),
		dtt:  builtin.New(dtt, assets.Details{Symbol: "DTT", Decimals: 6}, journal, nil),
		now:  time.Unix(1700000000, 0),
	}
	timeSvc := mocks.NewMockTimeService(ctrl)
	timeSvc.EXPECT().GetTimeNow().AnyTimes().DoAndReturn(func() time.Time { return th.now })

	svc := assets.New(log, assets.NewDefaultConfig())
	require.NoError(t, svc.Register(usdc, th.usdc))
	require.NoError(t, svc.Register(dtt, th.dtt))

	gov, err := governance.NewEngine(log, governance.NewDefaultConfig(), broker, journal, owner, usdc)
	require.NoError(t, err)
	require.NoError(t, gov.SetMarketConfig(ctx, owner, 0, 864000*time.Second, dtt))
	require.NoError(t, gov.ChangeDustFlowFactory(ctx, owner, factoryAddr))
	th.gov = gov

	th.factory = markets.New(log, markets.NewDefaultConfig(), factoryAddr, gov, svc, broker, journal, timeSvc)
	th.vault, err = collateral.New(log, collateral.NewDefaultConfig(), vaultAddr, collateral.Roles{Owner: owner}, usdc, collateral.NewHoldStrategy(vaultAddr), svc, journal, broker)
	require.NoError(t, err)

	hcfg := helper.NewDefaultConfig()
	hcfg.DepthLevels = 2
	th.Helper = helper.New(log, hcfg, owner, gov, th.factory, th.vault, journal)

	for _, party := range []types.Address{alice, bob} {
		for _, tok := range []*builtin.ERC20{th.usdc, th.dtt} {
			require.NoError(t, tok.Mint(ctx, party, num.NewUint(1_000_000000)))
			require.True(t, tok.Approve(ctx, party, vaultAddr, num.MaxUint()))
		}
	}
	journal.Reset()
	return th
}

func (th *testHelper) approveMarket(t *testing.T, market types.Address) {
	t.Helper()
	for _, party := range []types.Address{alice, bob} {
		for _, tok := range []*builtin.ERC20{th.usdc, th.dtt} {
			require.True(t, tok.Approve(context.Background(), party, market, num.MaxUint()))
		}
	}
}

func TestMarketViews(t *testing.T) {
	th := getTestHelper(t)
	ctx := context.Background()

	assert.Empty(t, th.MarketsInfo())
	_, err := th.MarketSummary(0, th.now)
	assert.ErrorIs(t, err, types.ErrMarketNotFound)

	addr, err := th.factory.CreateMarket(ctx, alice)
	require.NoError(t, err)
	th.approveMarket(t, addr)
	m, err := th.factory.GetMarket(0)
	require.NoError(t, err)

	for _, p := range []uint64{210000, 220000, 230000} {
		_, err := m.PutTrade(ctx, alice, types.SideSell, num.NewUint(10_000000), num.NewUint(p))
		require.NoError(t, err)
	}
	_, err = m.PutTrade(ctx, bob, types.SideBuy, num.NewUint(5_000000), num.NewUint(190000))
	require.NoError(t, err)

	infos := th.MarketsInfo()
	require.Len(t, infos, 1)
	assert.Equal(t, addr, infos[0].MarketAddress)

	s, err := th.MarketSummary(0, th.now)
	require.NoError(t, err)
	assert.Equal(t, "190000", s.BestBid.String())
	assert.Equal(t, "210000", s.BestAsk.String())
	require.NotNil(t, s.MidPrice)
	assert.Equal(t, "0.2", s.MidPrice.String())
	assert.Len(t, s.Asks, 2)
	assert.Len(t, s.Bids, 1)
	assert.Equal(t, "35000000", s.OpenInterest.String())
	assert.Equal(t, "30000000", s.EscrowBase.String())
	assert.Equal(t, "950000", s.EscrowQuote.String())
	assert.Equal(t, usdc, s.QuoteAsset)
	assert.False(t, s.Expired)

	s, err = th.MarketSummary(0, th.now.Add(864000*time.Second))
	require.NoError(t, err)
	assert.True(t, s.Expired)
}

func TestVaultSummary(t *testing.T) {
	th := getTestHelper(t)
	ctx := context.Background()

	s := th.VaultSummary()
	assert.Equal(t, "uninitialized", s.State)
	assert.False(t, s.Reconciled)
	assert.Equal(t, "0.5", s.ReserveRatio.String())

	require.NoError(t, th.vault.Initialize(ctx, owner, usdc))
	_, err := th.vault.MintDust(ctx, alice, num.NewUint(1000000))
	require.NoError(t, err)

	s = th.VaultSummary()
	assert.Equal(t, "initialized", s.State)
	assert.Equal(t, "hold", s.Strategy)
	assert.Equal(t, usdc, s.Asset)
	assert.Equal(t, "500000", s.DustSupply.String())
	assert.Equal(t, "1000000", s.Position.TotalDeposited.String())
	assert.True(t, s.Reconciled)
	assert.True(t, s.Surplus.IsZero())
}

func TestChangeConfig(t *testing.T) {
	th := getTestHelper(t)
	ctx := context.Background()

	other := markets.New(logging.NewTestLogger(), markets.NewDefaultConfig(), stranger, th.gov, nil, nil, nil, nil)
	assert.ErrorIs(t, th.ChangeConfig(ctx, stranger, th.gov, other), types.ErrUnauthorized)
	assert.ErrorIs(t, th.ChangeConfig(ctx, owner, nil, other), types.ErrInvalidAddress)

	_, err := th.factory.CreateMarket(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, th.MarketsInfo(), 1)

	require.NoError(t, th.ChangeConfig(ctx, owner, th.gov, other))
	assert.Empty(t, th.MarketsInfo())
}
