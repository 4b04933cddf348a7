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

package protocol

import (
	"context"

	"code.vegaprotocol.io/dustflow/config"
	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	"code.vegaprotocol.io/dustflow/core/broker"
	"code.vegaprotocol.io/dustflow/core/collateral"
	"code.vegaprotocol.io/dustflow/core/governance"
	"code.vegaprotocol.io/dustflow/core/helper"
	"code.vegaprotocol.io/dustflow/core/markets"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/snapshot"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/core/yield"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/pkg/errors"
)

type allServices struct {
	ctx  context.Context
	log  *logging.Logger
	conf config.Config
	home string

	journal   *state.Journal
	broker    *broker.Broker
	recent    *broker.Recorder
	processor *processor.Processor

	assets     *assets.Service
	tokens     []*builtin.ERC20
	pool       *yield.MemPool
	governance *governance.Engine
	factory    *markets.Factory
	vault      *collateral.Vault
	helper     *helper.Helper
	snapshot   *snapshot.Engine
}

func newServices(
	ctx context.Context,
	log *logging.Logger,
	conf config.Config,
	home string,
) (_ *allServices, err error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	genesis := conf.Genesis

	svcs := &allServices{
		ctx:     ctx,
		log:     log,
		conf:    conf,
		home:    home,
		journal: state.NewJournal(),
	}

	svcs.broker = broker.New(svcs.ctx, svcs.log, svcs.conf.Broker)
	svcs.recent = broker.NewRecorder(svcs.ctx, svcs.conf.Broker.RecentEvents)
	svcs.broker.SubscribeBatch(broker.NewCounter(svcs.ctx), svcs.recent)
	svcs.processor, err = processor.New(svcs.log, svcs.conf.Processor, svcs.journal, svcs.broker, nil)
	if err != nil {
		return nil, err
	}
	// the engines send their events through the processor so the events
	// of a reverted transaction never reach the broker.
	evts := svcs.processor.Broker()

	svcs.assets = assets.New(svcs.log, svcs.conf.Assets)
	for _, a := range genesis.Assets {
		tok := builtin.New(a.Address.Get(), assets.Details{
			Name:     a.Name,
			Symbol:   a.Symbol,
			Decimals: a.Decimals,
		}, svcs.journal, evts)
		if err := svcs.assets.Register(tok.Address(), tok); err != nil {
			return nil, err
		}
		svcs.tokens = append(svcs.tokens, tok)
	}

	svcs.pool = yield.New(svcs.log, svcs.conf.Yield, genesis.PoolAddress.Get(), svcs.assets, svcs.journal)
	for _, tok := range svcs.tokens {
		if err := svcs.pool.ListAsset(tok.Address()); err != nil {
			return nil, err
		}
	}

	svcs.governance, err = governance.NewEngine(
		svcs.log, svcs.conf.Governance, evts, svcs.journal, genesis.Owner.Get(), genesis.QuoteAsset.Get(),
	)
	if err != nil {
		return nil, err
	}

	svcs.factory = markets.New(
		svcs.log, svcs.conf.Markets, genesis.FactoryAddress.Get(), svcs.governance, svcs.assets, evts, svcs.journal, svcs.processor,
	)

	vaultAddress := genesis.VaultAddress.Get()
	var strategy collateral.Strategy = collateral.NewPoolStrategy(vaultAddress, svcs.pool)
	if genesis.Strategy == config.StrategyHold {
		strategy = collateral.NewHoldStrategy(vaultAddress)
	}
	roles := collateral.Roles{
		Owner:       genesis.Owner.Get(),
		Manager:     genesis.ManagerOrOwner(),
		FeeReceiver: genesis.FeeReceiver.Get(),
	}
	svcs.vault, err = collateral.New(
		svcs.log, svcs.conf.Collateral, vaultAddress, roles, genesis.CollateralAsset.Get(), strategy, svcs.assets, svcs.journal, evts,
	)
	if err != nil {
		return nil, err
	}
	// the vault is the Dust token, markets can use it as their collateral.
	if err := svcs.assets.Register(vaultAddress, svcs.vault); err != nil {
		return nil, err
	}

	svcs.helper = helper.New(svcs.log, svcs.conf.Helper, genesis.Owner.Get(), svcs.governance, svcs.factory, svcs.vault, svcs.journal)

	if err := svcs.loadGenesis(); err != nil {
		return nil, err
	}

	svcs.snapshot, err = snapshot.New(svcs.log, svcs.conf.Snapshot, svcs.home)
	if err != nil {
		return nil, err
	}
	svcs.snapshot.AddProviders(svcs.governance, svcs.pool, svcs.factory, svcs.vault)
	for _, tok := range svcs.tokens {
		svcs.snapshot.AddProviders(tok)
	}

	if svcs.snapshot.Latest() > 0 {
		if _, err := svcs.snapshot.Restore(svcs.ctx); err != nil {
			svcs.snapshot.Close()
			return nil, errors.Wrap(err, "could not restore the latest snapshot")
		}
		svcs.journal.Reset()
	}

	return svcs, nil
}

// loadGenesis mints the allocations and activates the factory, the
// genesis is never reverted.
func (svcs *allServices) loadGenesis() error {
	defer svcs.journal.Reset()

	for i, a := range svcs.conf.Genesis.Assets {
		allocs, err := a.ParseAllocations()
		if err != nil {
			return err
		}
		for account, amount := range allocs {
			if err := svcs.tokens[i].Mint(svcs.ctx, account, amount); err != nil {
				return errors.Wrapf(err, "could not allocate %s to %s", a.Symbol, account.Hex())
			}
		}
	}

	if svcs.conf.Genesis.ActivateFactory {
		owner := svcs.conf.Genesis.Owner.Get()
		if err := svcs.governance.ChangeDustFlowFactory(svcs.ctx, owner, svcs.factory.Address()); err != nil {
			return err
		}
	}

	svcs.log.Info("genesis loaded",
		logging.Address("owner", svcs.conf.Genesis.Owner.Get()),
		logging.Int("assets", len(svcs.tokens)),
		logging.String("strategy", svcs.vault.StrategyName()),
	)
	return nil
}

// reloadEngines must run between two transactions.
func (svcs *allServices) reloadEngines(cfg config.Config) {
	svcs.broker.ReloadConf(cfg.Broker)
	svcs.assets.ReloadConf(cfg.Assets)
	svcs.pool.ReloadConf(cfg.Yield)
	svcs.governance.ReloadConf(cfg.Governance)
	svcs.factory.ReloadConf(cfg.Markets)
	svcs.vault.ReloadConf(cfg.Collateral)
	svcs.helper.ReloadConf(cfg.Helper)
	svcs.snapshot.ReloadConf(cfg.Snapshot)
}

func (svcs *allServices) token(asset types.Address) (assets.Token, error) {
	return svcs.assets.Get(asset)
}

func (svcs *allServices) Stop() {
	if err := svcs.snapshot.Close(); err != nil {
		svcs.log.Error("could not close the snapshot database", logging.Error(err))
	}
}
