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

package governance

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/pkg/errors"
)

var ErrInvalidDuration = errors.New("settlement duration cannot be negative")

// Broker - event bus.
type Broker interface {
	Send(e events.Event)
}

// Engine is the config registry: per market configuration slots plus the
// market independent pointers (owner, active factory, quote asset).
// Every setter is owner only.
type Engine struct {
	Config
	log     *logging.Logger
	broker  Broker
	journal *state.Journal

	owner      types.Address
	factory    types.Address
	quoteAsset types.Address
	configs    map[uint64]types.MarketConfig
	// latest is the slot written last, new markets fall back to it.
	latest    uint64
	hasLatest bool
}

func NewEngine(
	log *logging.Logger,
	cfg Config,
	broker Broker,
	journal *state.Journal,
	owner types.Address,
	quoteAsset types.Address,
) (*Engine, error) {
	if types.IsZeroAddress(owner) {
		return nil, errors.Wrap(types.ErrInvalidAddress, "owner")
	}
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:     cfg,
		log:        log,
		broker:     broker,
		journal:    journal,
		owner:      owner,
		quoteAsset: quoteAsset,
		configs:    map[uint64]types.MarketConfig{},
	}, nil
}

// ReloadConf updates the internal configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.Config = cfg
}

func (e *Engine) Owner() types.Address {
	return e.owner
}

func (e *Engine) DustFlowFactory() types.Address {
	return e.factory
}

func (e *Engine) QuoteAsset() types.Address {
	return e.quoteAsset
}

// SetMarketConfig upserts the configuration slot of marketID.
func (e *Engine) SetMarketConfig(ctx context.Context, caller types.Address, marketID uint64, duration time.Duration, collateralAsset types.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if duration < 0 {
		return ErrInvalidDuration
	}
	e.setConfig(ctx, types.MarketConfig{
		MarketID:           marketID,
		SettlementDuration: duration,
		CollateralAsset:    collateralAsset,
	})
	return nil
}

// GetMarketConfig returns the zero configuration for a slot never set.
func (e *Engine) GetMarketConfig(marketID uint64) types.MarketConfig {
	if c, ok := e.configs[marketID]; ok {
		return c
	}
	return types.MarketConfig{MarketID: marketID}
}

// CurrentMarketConfig is the configuration a market created with marketID
// is bound to: its own slot once set, else the slot written last.
func (e *Engine) CurrentMarketConfig(marketID uint64) types.MarketConfig {
	if c, ok := e.configs[marketID]; ok && c.IsConfigured() {
		return c
	}
	if !e.hasLatest {
		return types.MarketConfig{MarketID: marketID}
	}
	c := e.configs[e.latest]
	c.MarketID = marketID
	return c
}

// MarketConfigs returns every slot set so far, ordered by market id.
func (e *Engine) MarketConfigs() []types.MarketConfig {
	out := make([]types.MarketConfig, 0, len(e.configs))
	for _, c := range e.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketID < out[j].MarketID })
	return out
}

// ChangeCollateral only updates the collateral asset of the slot.
func (e *Engine) ChangeCollateral(ctx context.Context, caller types.Address, marketID uint64, asset types.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	c := e.GetMarketConfig(marketID)
	c.CollateralAsset = asset
	e.setConfig(ctx, c)
	return nil
}

// ChangeSettlementDuration only updates the settlement window of the slot.
func (e *Engine) ChangeSettlementDuration(ctx context.Context, caller types.Address, marketID uint64, duration time.Duration) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if duration < 0 {
		return ErrInvalidDuration
	}
	c := e.GetMarketConfig(marketID)
	c.SettlementDuration = duration
	e.setConfig(ctx, c)
	return nil
}

func (e *Engine) ChangeDustFlowFactory(ctx context.Context, caller, factory types.Address) error {
	return e.setPointer(ctx, caller, "factory", &e.factory, factory)
}

func (e *Engine) ChangeQuoteAsset(ctx context.Context, caller, asset types.Address) error {
	return e.setPointer(ctx, caller, "quoteAsset", &e.quoteAsset, asset)
}

func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner types.Address) error {
	return e.setPointer(ctx, caller, "owner", &e.owner, newOwner)
}

// ValidateForUse rejects configurations a market cannot be created from.
func (e *Engine) ValidateForUse(c types.MarketConfig) error {
	if !c.IsConfigured() {
		return types.ErrMarketNotConfigured
	}
	if types.IsZeroAddress(e.quoteAsset) {
		return errors.Wrap(types.ErrMarketNotConfigured, "no quote asset")
	}
	return nil
}

func (e *Engine) onlyOwner(caller types.Address) error {
	if caller != e.owner {
		e.log.Debug("unauthorised governance call",
			logging.Address("caller", caller),
			logging.Address("owner", e.owner),
		)
		return types.ErrUnauthorized
	}
	return nil
}

func (e *Engine) setConfig(ctx context.Context, c types.MarketConfig) {
	prev, had := e.configs[c.MarketID]
	prevLatest, prevHasLatest := e.latest, e.hasLatest
	e.journal.Append(func() {
		if had {
			e.configs[c.MarketID] = prev
		} else {
			delete(e.configs, c.MarketID)
		}
		e.latest, e.hasLatest = prevLatest, prevHasLatest
	})
	e.configs[c.MarketID] = c
	if c.IsConfigured() {
		e.latest, e.hasLatest = c.MarketID, true
	}
	e.log.Info("market configuration updated",
		logging.MarketID(c.MarketID),
		logging.Duration("settlement-duration", c.SettlementDuration),
		logging.Address("collateral-asset", c.CollateralAsset),
	)
	e.broker.Send(events.NewMarketConfigUpdated(ctx, c))
}

func (e *Engine) setPointer(ctx context.Context, caller types.Address, field string, ptr *types.Address, value types.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if types.IsZeroAddress(value) {
		return types.ErrInvalidAddress
	}
	prev := *ptr
	e.journal.Append(func() { *ptr = prev })
	*ptr = value
	e.log.Info("governance pointer updated",
		logging.String("field", field),
		logging.Address("value", value),
	)
	e.broker.Send(events.NewGovernanceUpdated(ctx, field, value))
	return nil
}

type engineState struct {
	Owner      types.Address        `json:"owner"`
	Factory    types.Address        `json:"factory"`
	QuoteAsset types.Address        `json:"quoteAsset"`
	Configs    []types.MarketConfig `json:"configs"`
	Latest     *uint64              `json:"latest,omitempty"`
}

func (e *Engine) Namespace() string {
	return "governance"
}

func (e *Engine) GetState() ([]byte, error) {
	st := engineState{
		Owner:      e.owner,
		Factory:    e.factory,
		QuoteAsset: e.quoteAsset,
		Configs:    e.MarketConfigs(),
	}
	if e.hasLatest {
		latest := e.latest
		st.Latest = &latest
	}
	return json.Marshal(st)
}

func (e *Engine) LoadState(_ context.Context, data []byte) error {
	var st engineState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	e.owner = st.Owner
	e.factory = st.Factory
	e.quoteAsset = st.QuoteAsset
	e.configs = make(map[uint64]types.MarketConfig, len(st.Configs))
	for _, c := range st.Configs {
		e.configs[c.MarketID] = c
	}
	e.latest, e.hasLatest = 0, false
	if st.Latest != nil {
		e.latest, e.hasLatest = *st.Latest, true
	}
	return nil
}
