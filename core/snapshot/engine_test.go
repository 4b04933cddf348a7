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

package snapshot_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	bmocks "code.vegaprotocol.io/dustflow/core/broker/mocks"
	"code.vegaprotocol.io/dustflow/core/governance"
	"code.vegaprotocol.io/dustflow/core/snapshot"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = types.MustAddress("0x0000000000000000000000000000000000000001")
	alice = types.MustAddress("0x00000000000000000000000000000000000000a1")
	dtt   = types.MustAddress("0x00000000000000000000000000000000000000c1")
	usdc  = types.MustAddress("0x00000000000000000000000000000000000000c2")
)

// world is the set of providers a node registers.
type world struct {
	gov   *governance.Engine
	token *builtin.ERC20
	kids  *parent
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctrl := gomock.NewController(t)
	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes()
	broker.EXPECT().SendBatch(gomock.Any()).AnyTimes()

	journal := state.NewJournal()
	gov, err := governance.NewEngine(logging.NewTestLogger(), governance.NewDefaultConfig(), broker, journal, owner, usdc)
	require.NoError(t, err)
	return &world{
		gov:   gov,
		token: builtin.New(dtt, assets.Details{Name: "DTT", Symbol: "DTT", Decimals: 6}, journal, nil),
		kids:  &parent{},
	}
}

func (w *world) register(e *snapshot.Engine) {
	e.AddProviders(w.kids, w.token, w.gov)
}

// parent creates one child provider per entry of its state.
type parent struct {
	names    []string
	children []*child
	loadedAt int
}

func (p *parent) Namespace() string { return "markets" }

func (p *parent) GetState() ([]byte, error) { return json.Marshal(p.names) }

func (p *parent) LoadState(_ context.Context, data []byte) error {
	if err := json.Unmarshal(data, &p.names); err != nil {
		return err
	}
	p.children = nil
	for _, n := range p.names {
		p.children = append(p.children, &child{name: n})
	}
	loadCounter++
	p.loadedAt = loadCounter
	return nil
}

func (p *parent) StateProviders() []types.StateProvider {
	out := make([]types.StateProvider, 0, len(p.children))
	for _, c := range p.children {
		out = append(out, c)
	}
	return out
}

func (p *parent) add(name, value string) {
	p.names = append(p.names, name)
	p.children = append(p.children, &child{name: name, value: value})
}

type child struct {
	name     string
	value    string
	loadedAt int
}

func (c *child) Namespace() string { return "market." + c.name }

func (c *child) GetState() ([]byte, error) { return []byte(c.value), nil }

func (c *child) LoadState(_ context.Context, data []byte) error {
	c.value = string(data)
	loadCounter++
	c.loadedAt = loadCounter
	return nil
}

var loadCounter int

func getTestEngine(t *testing.T, cfg snapshot.Config, home string) *snapshot.Engine {
	t.Helper()
	eng, err := snapshot.New(logging.NewTestLogger(), cfg, home)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func populate(t *testing.T, w *world) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.gov.SetMarketConfig(ctx, owner, 0, 240*time.Hour, dtt))
	require.NoError(t, w.token.Mint(ctx, alice, num.NewUint(1000)))
	w.kids.add("a", "alpha")
	w.kids.add("b", "beta")
}

func TestEngineConfig(t *testing.T) {
	t.Run("Default configuration is valid", func(t *testing.T) {
		cfg := snapshot.NewDefaultConfig()
		require.NoError(t, cfg.Validate())
	})
	t.Run("Invalid configuration fails", func(t *testing.T) {
		cfg := snapshot.NewDefaultConfig()
		cfg.KeepRecent = 0
		require.Error(t, cfg.Validate())

		cfg = snapshot.NewDefaultConfig()
		cfg.Storage = "badger"
		require.ErrorIs(t, cfg.Validate(), snapshot.ErrInvalidSnapshotStorageMethod)

		cfg = snapshot.NewTestConfig()
		cfg.DBPath = t.TempDir()
		require.Error(t, cfg.Validate())
	})
}

func TestSnapshotAndRestore(t *testing.T) {
	t.Run("Restoring with no snapshot fails", func(t *testing.T) {
		eng := getTestEngine(t, snapshot.NewTestConfig(), "")
		_, err := eng.Restore(context.Background())
		assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
	})
	t.Run("Namespaces are stored in call order", func(t *testing.T) {
		w := newWorld(t)
		populate(t, w)
		eng := getTestEngine(t, snapshot.NewTestConfig(), "")
		w.register(eng)

		m, err := eng.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), m.Version)
		assert.Equal(t, []string{
			"governance",
			"token." + dtt.Hex(),
			"markets",
			"market.a",
			"market.b",
		}, m.Namespaces)
	})
	t.Run("A registered namespace cannot be added twice", func(t *testing.T) {
		w := newWorld(t)
		eng := getTestEngine(t, snapshot.NewTestConfig(), "")
		w.register(eng)
		assert.Panics(t, func() { eng.AddProviders(w.gov) })
	})
	t.Run("A restored world has the state of the snapshot", testRestoreLevelDB)
	t.Run("Only the most recent snapshots are kept", testKeepRecent)
}

func testRestoreLevelDB(t *testing.T) {
	home := t.TempDir()
	ctx := context.Background()

	w := newWorld(t)
	populate(t, w)
	eng, err := snapshot.New(logging.NewTestLogger(), snapshot.NewDefaultConfig(), home)
	require.NoError(t, err)
	w.register(eng)
	taken, err := eng.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	// a new node opening the same database
	fresh := newWorld(t)
	eng = getTestEngine(t, snapshot.NewDefaultConfig(), home)
	assert.Equal(t, taken.Version, eng.Latest())
	fresh.register(eng)

	restored, err := eng.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, taken.Hash, restored.Hash)

	assert.Equal(t, w.gov.GetMarketConfig(0), fresh.gov.GetMarketConfig(0))
	assert.Equal(t, "1000", fresh.token.BalanceOf(alice).String())
	require.Len(t, fresh.kids.children, 2)
	assert.Equal(t, "alpha", fresh.kids.children[0].value)
	assert.Equal(t, "beta", fresh.kids.children[1].value)
	// children are loaded after the parent recreated them
	assert.Greater(t, fresh.kids.children[0].loadedAt, fresh.kids.loadedAt)

	// and taking a snapshot again gives the same hash
	again, err := eng.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, taken.Hash, again.Hash)
}

func testKeepRecent(t *testing.T) {
	cfg := snapshot.NewTestConfig()
	cfg.KeepRecent = 2
	w := newWorld(t)
	eng := getTestEngine(t, cfg, "")
	w.register(eng)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := eng.Snapshot(ctx)
		require.NoError(t, err)
	}
	list, err := eng.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(3), list[0].Version)
	assert.Equal(t, uint64(4), list[1].Version)

	_, err = eng.RestoreVersion(ctx, 1)
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
	_, err = eng.RestoreVersion(ctx, 3)
	assert.NoError(t, err)
}
