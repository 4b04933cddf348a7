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

package helper

import (
	"context"
	"time"

	"code.vegaprotocol.io/dustflow/core/collateral"
	"code.vegaprotocol.io/dustflow/core/matching"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"
)

// Governance is the part of the config registry read by the helper.
type Governance interface {
	GetMarketConfig(marketID uint64) types.MarketConfig
	QuoteAsset() types.Address
}

// Factory is the market directory.
type Factory interface {
	MarketID() uint64
	GetMarket(id uint64) (*matching.Market, error)
}

// Vault is the read side of the collateral vault.
type Vault interface {
	Address() types.Address
	Asset() types.Address
	StrategyName() string
	InitializeState() collateral.State
	Position() types.CollateralPosition
	ReserveRatio() *num.Uint
	TotalSupply() *num.Uint
	Reconcile() (*num.Uint, error)
}

// MarketSummary is the aggregated view of a market.
type MarketSummary struct {
	Record        types.MarketRecord `json:"record"`
	CurrentConfig types.MarketConfig `json:"currentConfig"`
	QuoteAsset    types.Address      `json:"quoteAsset"`
	Expired       bool               `json:"expired"`
	BestBid       *num.Uint          `json:"bestBid,omitempty"`
	BestAsk       *num.Uint          `json:"bestAsk,omitempty"`
	MidPrice      *num.Decimal       `json:"midPrice,omitempty"`
	Bids          types.PriceLevels  `json:"bids"`
	Asks          types.PriceLevels  `json:"asks"`
	OpenInterest  *num.Uint          `json:"openInterest"`
	EscrowBase    *num.Uint          `json:"escrowBase"`
	EscrowQuote   *num.Uint          `json:"escrowQuote"`
}

// VaultSummary is the aggregated view of the vault.
type VaultSummary struct {
	Address      types.Address            `json:"address"`
	Asset        types.Address            `json:"asset"`
	State        string                   `json:"state"`
	Strategy     string                   `json:"strategy"`
	Position     types.CollateralPosition `json:"position"`
	DustSupply   *num.Uint                `json:"dustSupply"`
	ReserveRatio num.Decimal              `json:"reserveRatio"`
	Surplus      *num.Uint                `json:"surplus,omitempty"`
	Reconciled   bool                     `json:"reconciled"`
}

// Helper serves read only views over the registries, the market books
// and the vault.
type Helper struct {
	log     *logging.Logger
	cfg     Config
	owner   types.Address
	journal *state.Journal

	gov     Governance
	factory Factory
	vault   Vault
}

func New(log *logging.Logger, cfg Config, owner types.Address, gov Governance, factory Factory, vault Vault, journal *state.Journal) *Helper {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Helper{
		log:     log,
		cfg:     cfg,
		owner:   owner,
		journal: journal,
		gov:     gov,
		factory: factory,
		vault:   vault,
	}
}

// ReloadConf updates the internal configuration.
func (h *Helper) ReloadConf(cfg Config) {
	h.log.Info("reloading configuration")
	if h.log.GetLevel() != cfg.Level.Get() {
		h.log.Info("updating log level",
			logging.String("old", h.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		h.log.SetLevel(cfg.Level.Get())
	}

	h.cfg = cfg
}

// ChangeConfig re-points the helper to another registry and factory.
func (h *Helper) ChangeConfig(_ context.Context, caller types.Address, gov Governance, factory Factory) error {
	if caller != h.owner {
		return types.ErrUnauthorized
	}
	if gov == nil || factory == nil {
		return types.ErrInvalidAddress
	}
	prevGov, prevFactory := h.gov, h.factory
	h.journal.Append(func() { h.gov, h.factory = prevGov, prevFactory })
	h.gov, h.factory = gov, factory
	h.log.Info("helper configuration changed")
	return nil
}

// MarketsInfo returns the record of every market, by id.
func (h *Helper) MarketsInfo() []types.MarketRecord {
	n := h.factory.MarketID()
	out := make([]types.MarketRecord, 0, n)
	for id := uint64(0); id < n; id++ {
		m, err := h.factory.GetMarket(id)
		if err != nil {
			h.log.Error("market missing from the factory", logging.MarketID(id), logging.Error(err))
			continue
		}
		out = append(out, m.Record())
	}
	return out
}

// MarketSummary aggregates the book of a market at the given time.
func (h *Helper) MarketSummary(id uint64, now time.Time) (*MarketSummary, error) {
	m, err := h.factory.GetMarket(id)
	if err != nil {
		return nil, err
	}
	base, quote := m.Escrow()
	s := &MarketSummary{
		Record:        m.Record(),
		CurrentConfig: h.gov.GetMarketConfig(id),
		QuoteAsset:    m.Record().QuoteAsset,
		Expired:       m.IsExpired(now),
		Bids:          h.truncate(m.Depth(types.SideBuy)),
		Asks:          h.truncate(m.Depth(types.SideSell)),
		OpenInterest:  m.TotalRemaining(),
		EscrowBase:    base,
		EscrowQuote:   quote,
	}
	if bid, err := m.BestPrice(types.SideBuy); err == nil {
		s.BestBid = bid
	}
	if ask, err := m.BestPrice(types.SideSell); err == nil {
		s.BestAsk = ask
	}
	if s.BestBid != nil && s.BestAsk != nil {
		mid := num.ScaledDecimal(num.Sum(s.BestBid, s.BestAsk), int32(m.PriceDecimals())).Div(num.DecimalFromInt64(2))
		s.MidPrice = &mid
	}
	return s, nil
}

// VaultSummary aggregates the vault position, the ratio is rendered as a
// fraction (5000 bps is 0.5).
func (h *Helper) VaultSummary() *VaultSummary {
	s := &VaultSummary{
		Address:      h.vault.Address(),
		Asset:        h.vault.Asset(),
		State:        h.vault.InitializeState().String(),
		Strategy:     h.vault.StrategyName(),
		Position:     h.vault.Position(),
		DustSupply:   h.vault.TotalSupply(),
		ReserveRatio: num.DecimalFromUint(h.vault.ReserveRatio()).Div(num.DecimalFromUint(num.BasisPoints)),
	}
	if surplus, err := h.vault.Reconcile(); err == nil {
		s.Surplus = surplus
		s.Reconciled = true
	}
	return s
}

func (h *Helper) truncate(levels types.PriceLevels) types.PriceLevels {
	if h.cfg.DepthLevels > 0 && len(levels) > h.cfg.DepthLevels {
		return levels[:h.cfg.DepthLevels]
	}
	return levels
}
