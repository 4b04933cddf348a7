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

package markets

import (
	"context"
	"encoding/json"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/matching"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Governance is the part of the config registry the factory reads.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/governance_mock.go -package mocks code.vegaprotocol.io/dustflow/core/markets Governance
type Governance interface {
	Owner() types.Address
	DustFlowFactory() types.Address
	QuoteAsset() types.Address
	CurrentMarketConfig(marketID uint64) types.MarketConfig
	ValidateForUse(c types.MarketConfig) error
}

// Assets resolves token addresses.
type Assets interface {
	Get(addr types.Address) (assets.Token, error)
}

// Broker - event bus.
type Broker interface {
	Send(e events.Event)
	SendBatch(evts []events.Event)
}

// Factory is the market registry. Records are append only and market ids
// are allocated sequentially from 0.
type Factory struct {
	Config
	log     *logging.Logger
	address types.Address
	gov     Governance
	assets  Assets
	broker  Broker
	journal *state.Journal
	timeSvc matching.TimeService

	markets   []*matching.Market
	byAddress map[types.Address]*matching.Market
}

func New(
	log *logging.Logger,
	cfg Config,
	address types.Address,
	gov Governance,
	assets Assets,
	broker Broker,
	journal *state.Journal,
	timeSvc matching.TimeService,
) *Factory {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Factory{
		Config:    cfg,
		log:       log,
		address:   address,
		gov:       gov,
		assets:    assets,
		broker:    broker,
		journal:   journal,
		timeSvc:   timeSvc,
		markets:   []*matching.Market{},
		byAddress: map[types.Address]*matching.Market{},
	}
}

// ReloadConf updates the internal configuration of the factory and of
// every market it created.
func (f *Factory) ReloadConf(cfg Config) {
	f.log.Info("reloading configuration")
	if f.log.GetLevel() != cfg.Level.Get() {
		f.log.Info("updating log level",
			logging.String("old", f.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		f.log.SetLevel(cfg.Level.Get())
	}

	f.Config = cfg
	for _, m := range f.markets {
		m.ReloadConf(cfg.Matching)
	}
}

func (f *Factory) Address() types.Address {
	return f.address
}

// CreateMarket deploys a market bound to the current configuration of the
// next id, the configuration written last when that slot is still unset.
func (f *Factory) CreateMarket(ctx context.Context, caller types.Address) (types.Address, error) {
	if f.gov.DustFlowFactory() != f.address {
		return types.ZeroAddress, types.ErrFactoryInactive
	}
	if f.RestrictCreation && caller != f.gov.Owner() {
		return types.ZeroAddress, types.ErrUnauthorized
	}

	id := uint64(len(f.markets))
	cfg := f.gov.CurrentMarketConfig(id)
	if err := f.gov.ValidateForUse(cfg); err != nil {
		return types.ZeroAddress, err
	}
	quoteAsset := f.gov.QuoteAsset()
	if cfg.CollateralAsset == quoteAsset {
		return types.ZeroAddress, errors.Wrap(types.ErrMarketNotConfigured, "collateral asset is the quote asset")
	}
	base, err := f.assets.Get(cfg.CollateralAsset)
	if err != nil {
		return types.ZeroAddress, errors.Wrapf(err, "collateral asset %s", cfg.CollateralAsset.Hex())
	}
	quote, err := f.assets.Get(quoteAsset)
	if err != nil {
		return types.ZeroAddress, errors.Wrapf(err, "quote asset %s", quoteAsset.Hex())
	}

	record := types.MarketRecord{
		MarketID:      id,
		MarketAddress: crypto.CreateAddress(f.address, id),
		Config:        cfg,
		QuoteAsset:    quoteAsset,
		CreatedAt:     f.timeSvc.GetTimeNow(),
	}
	f.addMarket(f.newMarket(record, base, quote))

	f.log.Info("market created",
		logging.MarketID(id),
		logging.Address("market", record.MarketAddress),
		logging.Address("collateral-asset", cfg.CollateralAsset),
		logging.Address("caller", caller),
	)
	f.broker.Send(events.NewMarketCreatedEvent(ctx, record))
	return record.MarketAddress, nil
}

// GetMarketInfo returns the record of a created market.
func (f *Factory) GetMarketInfo(id uint64) (types.MarketRecord, error) {
	m, err := f.GetMarket(id)
	if err != nil {
		return types.MarketRecord{}, err
	}
	return m.Record(), nil
}

// MarketID is the number of markets created, also the id of the next one.
func (f *Factory) MarketID() uint64 {
	return uint64(len(f.markets))
}

func (f *Factory) GetMarket(id uint64) (*matching.Market, error) {
	if id >= uint64(len(f.markets)) {
		return nil, types.ErrMarketNotFound
	}
	return f.markets[id], nil
}

func (f *Factory) GetMarketByAddress(addr types.Address) (*matching.Market, error) {
	m, ok := f.byAddress[addr]
	if !ok {
		return nil, types.ErrMarketNotFound
	}
	return m, nil
}

// Markets returns the markets by id.
func (f *Factory) Markets() []*matching.Market {
	out := make([]*matching.Market, len(f.markets))
	copy(out, f.markets)
	return out
}

func (f *Factory) newMarket(record types.MarketRecord, base, quote assets.Token) *matching.Market {
	return matching.NewMarket(f.log, f.Matching, record, base, quote, f.journal, f.broker, f.timeSvc)
}

func (f *Factory) addMarket(m *matching.Market) {
	n := len(f.markets)
	addr := m.Address()
	f.journal.Append(func() {
		f.markets = f.markets[:n]
		delete(f.byAddress, addr)
	})
	f.markets = append(f.markets, m)
	f.byAddress[addr] = m
}

type factoryState struct {
	Records []types.MarketRecord `json:"records"`
}

func (f *Factory) Namespace() string {
	return "markets"
}

func (f *Factory) GetState() ([]byte, error) {
	st := factoryState{Records: make([]types.MarketRecord, 0, len(f.markets))}
	for _, m := range f.markets {
		st.Records = append(st.Records, m.Record())
	}
	return json.Marshal(st)
}

// LoadState recreates empty markets from the records, their books are
// restored through their own state providers.
func (f *Factory) LoadState(_ context.Context, data []byte) error {
	var st factoryState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	f.markets = make([]*matching.Market, 0, len(st.Records))
	f.byAddress = make(map[types.Address]*matching.Market, len(st.Records))
	for i, r := range st.Records {
		if r.MarketID != uint64(i) {
			return errors.Errorf("market %d stored at position %d", r.MarketID, i)
		}
		base, err := f.assets.Get(r.Config.CollateralAsset)
		if err != nil {
			return errors.Wrapf(err, "market %d collateral asset", r.MarketID)
		}
		quote, err := f.assets.Get(r.QuoteAsset)
		if err != nil {
			return errors.Wrapf(err, "market %d quote asset", r.MarketID)
		}
		m := f.newMarket(r, base, quote)
		f.markets = append(f.markets, m)
		f.byAddress[m.Address()] = m
	}
	return nil
}

// StateProviders returns the markets so their books can be snapshotted.
func (f *Factory) StateProviders() []types.StateProvider {
	out := make([]types.StateProvider, 0, len(f.markets))
	for _, m := range f.markets {
		out = append(out, m)
	}
	return out
}
