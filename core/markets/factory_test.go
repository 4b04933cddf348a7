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

package markets_test

import (
	"context"
	"testing"
	"time"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	bmocks "code.vegaprotocol.io/dustflow/core/broker/mocks"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/governance"
	"code.vegaprotocol.io/dustflow/core/markets"
	"code.vegaprotocol.io/dustflow/core/markets/mocks"
	tmocks "code.vegaprotocol.io/dustflow/core/matching/mocks"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner       = types.MustAddress("0x0000000000000000000000000000000000000001")
	stranger    = types.MustAddress("0x0000000000000000000000000000000000000002")
	usdc        = types.MustAddress("0x00000000000000000000000000000000000000c0")
	dtt         = types.MustAddress("0x00000000000000000000000000000000000000d7")
	factoryAddr = types.MustAddress("0x00000000000000000000000000000000000000fa")
)

type testFactory struct {
	*markets.Factory
	ctrl    *gomock.Controller
	gov     *mocks.MockGovernance
	broker  *bmocks.MockInterface
	journal *state.Journal
	assets  *assets.Service
	now     time.Time
}

func getTestFactory(t *testing.T, cfg markets.Config) *testFactory {
	t.Helper()
	ctrl := gomock.NewController(t)
	gov := mocks.NewMockGovernance(ctrl)
	tf := newTestFactory(t, ctrl, cfg, gov, state.NewJournal())
	tf.gov = gov
	return tf
}

func newTestFactory(t *testing.T, ctrl *gomock.Controller, cfg markets.Config, gov markets.Governance, journal *state.Journal) *testFactory {
	t.Helper()
	broker := bmocks.NewMockInterface(ctrl)
	timeSvc := tmocks.NewMockTimeService(ctrl)

	svc := assets.New(logging.NewTestLogger(), assets.NewDefaultConfig())
	require.NoError(t, svc.Register(usdc, builtin.New(usdc, assets.Details{Symbol: "USDC", Decimals: 6}, journal, nil)))
	require.NoError(t, svc.Register(dtt, builtin.New(dtt, assets.Details{Symbol: "DTT", Decimals: 6}, journal, nil)))

	tf := &testFactory{
		ctrl:    ctrl,
		broker:  broker,
		journal: journal,
		assets:  svc,
		now:     time.Unix(1700000000, 0),
	}
	timeSvc.EXPECT().GetTimeNow().AnyTimes().DoAndReturn(func() time.Time { return tf.now })
	tf.Factory = markets.New(logging.NewTestLogger(), cfg, factoryAddr, gov, svc, broker, journal, timeSvc)
	return tf
}

// expectConfigured sets up governance as the deploy script leaves it.
func (tf *testFactory) expectConfigured() {
	tf.gov.EXPECT().DustFlowFactory().AnyTimes().Return(factoryAddr)
	tf.gov.EXPECT().Owner().AnyTimes().Return(owner)
	tf.gov.EXPECT().QuoteAsset().AnyTimes().Return(usdc)
	tf.gov.EXPECT().CurrentMarketConfig(gomock.Any()).AnyTimes().DoAndReturn(func(id uint64) types.MarketConfig {
		return types.MarketConfig{MarketID: id, SettlementDuration: 864000 * time.Second, CollateralAsset: dtt}
	})
	tf.gov.EXPECT().ValidateForUse(gomock.Any()).AnyTimes().Return(nil)
}

func TestCreateMarket(t *testing.T) {
	t.Run("A configured slot creates a market", testCreateMarket)
	t.Run("Two calls create two markets", testCreateTwoMarkets)
	t.Run("An inactive factory cannot create markets", testInactiveFactory)
	t.Run("An unconfigured slot is rejected", testUnconfiguredSlot)
	t.Run("Unknown assets are rejected", testUnknownAsset)
	t.Run("Restricted creation is owner only", testRestrictedCreation)
	t.Run("Reverting the journal removes the market", testRevertCreation)
	t.Run("Markets fall back to the configuration written last", testCreateFromLatestConfig)
}

// getTestGovernance returns a registry with only slot 0 configured and
// the factory activated.
func getTestGovernance(t *testing.T, ctrl *gomock.Controller, journal *state.Journal) *governance.Engine {
	t.Helper()
	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes()
	gov, err := governance.NewEngine(logging.NewTestLogger(), governance.NewDefaultConfig(), broker, journal, owner, usdc)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, gov.SetMarketConfig(ctx, owner, 0, 864000*time.Second, dtt))
	require.NoError(t, gov.ChangeDustFlowFactory(ctx, owner, factoryAddr))
	return gov
}

func testCreateFromLatestConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := state.NewJournal()
	gov := getTestGovernance(t, ctrl, journal)
	tf := newTestFactory(t, ctrl, markets.NewDefaultConfig(), gov, journal)
	tf.broker.EXPECT().Send(gomock.Any()).Times(3)
	ctx := context.Background()

	a0, err := tf.CreateMarket(ctx, owner)
	require.NoError(t, err)
	a1, err := tf.CreateMarket(ctx, owner)
	require.NoError(t, err)
	assert.NotEqual(t, a0, a1)
	assert.Equal(t, uint64(2), tf.MarketID())

	info, err := tf.GetMarketInfo(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.MarketID)
	assert.Equal(t, uint64(1), info.Config.MarketID)
	assert.Equal(t, dtt, info.Config.CollateralAsset)
	assert.Equal(t, 864000*time.Second, info.Config.SettlementDuration)

	// a slot set for the next id wins over the fallback
	require.NoError(t, gov.SetMarketConfig(ctx, owner, 2, time.Hour, usdc))
	require.NoError(t, gov.ChangeQuoteAsset(ctx, owner, dtt))
	_, err = tf.CreateMarket(ctx, owner)
	require.NoError(t, err)
	info, err = tf.GetMarketInfo(2)
	require.NoError(t, err)
	assert.Equal(t, usdc, info.Config.CollateralAsset)
	assert.Equal(t, time.Hour, info.Config.SettlementDuration)

	// existing markets keep the configuration they were created with
	info, err = tf.GetMarketInfo(0)
	require.NoError(t, err)
	assert.Equal(t, dtt, info.Config.CollateralAsset)
}

func testCreateMarket(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	tf.expectConfigured()

	var sent events.Event
	tf.broker.EXPECT().Send(gomock.Any()).Times(1).Do(func(e events.Event) { sent = e })

	addr, err := tf.CreateMarket(context.Background(), stranger)
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(factoryAddr, 0), addr)
	assert.Equal(t, uint64(1), tf.MarketID())

	info, err := tf.GetMarketInfo(0)
	require.NoError(t, err)
	assert.Equal(t, addr, info.MarketAddress)
	assert.Equal(t, dtt, info.Config.CollateralAsset)
	assert.Equal(t, usdc, info.QuoteAsset)
	assert.Equal(t, tf.now.Add(864000*time.Second), info.ExpiresAt())

	m, err := tf.GetMarketByAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), m.MarketID())

	require.NotNil(t, sent)
	mc, ok := sent.(*events.MarketCreated)
	require.True(t, ok)
	assert.Equal(t, info, mc.Record())
}

func testCreateTwoMarkets(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	tf.expectConfigured()
	tf.broker.EXPECT().Send(gomock.Any()).Times(2)

	a0, err := tf.CreateMarket(context.Background(), owner)
	require.NoError(t, err)
	a1, err := tf.CreateMarket(context.Background(), owner)
	require.NoError(t, err)

	assert.NotEqual(t, a0, a1)
	assert.Equal(t, uint64(2), tf.MarketID())
	assert.Len(t, tf.Markets(), 2)

	_, err = tf.GetMarketInfo(2)
	assert.ErrorIs(t, err, types.ErrMarketNotFound)
	_, err = tf.GetMarketByAddress(stranger)
	assert.ErrorIs(t, err, types.ErrMarketNotFound)
}

func testInactiveFactory(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	tf.gov.EXPECT().DustFlowFactory().Return(types.ZeroAddress)

	_, err := tf.CreateMarket(context.Background(), owner)
	assert.ErrorIs(t, err, types.ErrFactoryInactive)
	assert.Equal(t, uint64(0), tf.MarketID())
}

func testUnconfiguredSlot(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	tf.gov.EXPECT().DustFlowFactory().Return(factoryAddr)
	tf.gov.EXPECT().CurrentMarketConfig(uint64(0)).Return(types.MarketConfig{MarketID: 0})
	tf.gov.EXPECT().ValidateForUse(types.MarketConfig{MarketID: 0}).Return(types.ErrMarketNotConfigured)

	_, err := tf.CreateMarket(context.Background(), owner)
	assert.ErrorIs(t, err, types.ErrMarketNotConfigured)
	assert.Equal(t, uint64(0), tf.MarketID())
}

func testUnknownAsset(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	unknown := types.MustAddress("0x00000000000000000000000000000000000000ee")
	tf.gov.EXPECT().DustFlowFactory().Return(factoryAddr)
	tf.gov.EXPECT().QuoteAsset().Return(usdc)
	tf.gov.EXPECT().CurrentMarketConfig(uint64(0)).Return(types.MarketConfig{CollateralAsset: unknown})
	tf.gov.EXPECT().ValidateForUse(gomock.Any()).Return(nil)

	_, err := tf.CreateMarket(context.Background(), owner)
	assert.ErrorIs(t, err, assets.ErrAssetDoesNotExist)
}

func testRestrictedCreation(t *testing.T) {
	cfg := markets.NewDefaultConfig()
	cfg.RestrictCreation = true
	tf := getTestFactory(t, cfg)
	tf.expectConfigured()
	tf.broker.EXPECT().Send(gomock.Any()).Times(1)

	_, err := tf.CreateMarket(context.Background(), stranger)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = tf.CreateMarket(context.Background(), owner)
	assert.NoError(t, err)
}

func testRevertCreation(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	tf.expectConfigured()
	tf.broker.EXPECT().Send(gomock.Any()).Times(2)

	snap := tf.journal.Snapshot()
	addr, err := tf.CreateMarket(context.Background(), owner)
	require.NoError(t, err)
	tf.journal.RevertToSnapshot(snap)

	assert.Equal(t, uint64(0), tf.MarketID())
	_, err = tf.GetMarketByAddress(addr)
	assert.ErrorIs(t, err, types.ErrMarketNotFound)

	// the id is allocated again
	again, err := tf.CreateMarket(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestFactorySnapshot(t *testing.T) {
	tf := getTestFactory(t, markets.NewDefaultConfig())
	tf.expectConfigured()
	tf.broker.EXPECT().Send(gomock.Any()).Times(2)

	_, err := tf.CreateMarket(context.Background(), owner)
	require.NoError(t, err)
	_, err = tf.CreateMarket(context.Background(), owner)
	require.NoError(t, err)

	data, err := tf.GetState()
	require.NoError(t, err)

	restored := getTestFactory(t, markets.NewDefaultConfig())
	require.NoError(t, restored.LoadState(context.Background(), data))
	assert.Equal(t, tf.Namespace(), restored.Namespace())
	assert.Equal(t, uint64(2), restored.MarketID())

	for id := uint64(0); id < 2; id++ {
		want, err := tf.GetMarketInfo(id)
		require.NoError(t, err)
		got, err := restored.GetMarketInfo(id)
		require.NoError(t, err)
		assert.Equal(t, want.MarketAddress, got.MarketAddress)
		assert.Equal(t, want.Config, got.Config)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	}

	providers := restored.StateProviders()
	require.Len(t, providers, 2)
	assert.Equal(t, tf.Markets()[1].Namespace(), providers[1].Namespace())
}
