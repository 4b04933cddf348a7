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
	"time"

	"code.vegaprotocol.io/dustflow/api/rest"
	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/broker"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/helper"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
)

var _ rest.Protocol = (*Protocol)(nil)

func (n *Protocol) submit(ctx context.Context, kind string, caller types.Address, fn processor.Tx) (*processor.Receipt, error) {
	return n.services.processor.Submit(ctx, kind, caller, fn)
}

func (n *Protocol) SetMarketConfig(ctx context.Context, caller types.Address, marketID uint64, duration time.Duration, asset types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "set_market_config", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.governance.SetMarketConfig(ctx, caller, marketID, duration, asset)
	})
}

func (n *Protocol) ChangeCollateral(ctx context.Context, caller types.Address, marketID uint64, asset types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "change_collateral", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.governance.ChangeCollateral(ctx, caller, marketID, asset)
	})
}

func (n *Protocol) ChangeSettlementDuration(ctx context.Context, caller types.Address, marketID uint64, duration time.Duration) (*processor.Receipt, error) {
	return n.submit(ctx, "change_settlement_duration", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.governance.ChangeSettlementDuration(ctx, caller, marketID, duration)
	})
}

func (n *Protocol) ChangeDustFlowFactory(ctx context.Context, caller, factory types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "change_factory", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.governance.ChangeDustFlowFactory(ctx, caller, factory)
	})
}

func (n *Protocol) ChangeQuoteAsset(ctx context.Context, caller, asset types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "change_quote_asset", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.governance.ChangeQuoteAsset(ctx, caller, asset)
	})
}

func (n *Protocol) TransferOwnership(ctx context.Context, caller, newOwner types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "transfer_ownership", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.governance.TransferOwnership(ctx, caller, newOwner)
	})
}

// CreateMarket returns the record of the new market as the transaction result.
func (n *Protocol) CreateMarket(ctx context.Context, caller types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "create_market", caller, func(ctx context.Context) (interface{}, error) {
		addr, err := n.services.factory.CreateMarket(ctx, caller)
		if err != nil {
			return nil, err
		}
		m, err := n.services.factory.GetMarketByAddress(addr)
		if err != nil {
			return nil, err
		}
		return m.Record(), nil
	})
}

// PutTrade returns the id of the new order.
func (n *Protocol) PutTrade(ctx context.Context, caller types.Address, marketID uint64, side types.Side, amount, price *num.Uint) (*processor.Receipt, error) {
	return n.submit(ctx, "put_trade", caller, func(ctx context.Context) (interface{}, error) {
		m, err := n.services.factory.GetMarket(marketID)
		if err != nil {
			return nil, err
		}
		return m.PutTrade(ctx, caller, side, amount, price)
	})
}

// MatchTrade returns the amount filled.
func (n *Protocol) MatchTrade(ctx context.Context, caller types.Address, marketID uint64, side types.Side, amount, price *num.Uint, orderIDs []uint64) (*processor.Receipt, error) {
	return n.submit(ctx, "match_trade", caller, func(ctx context.Context) (interface{}, error) {
		m, err := n.services.factory.GetMarket(marketID)
		if err != nil {
			return nil, err
		}
		return m.MatchTrade(ctx, caller, side, amount, price, orderIDs)
	})
}

func (n *Protocol) CancelTrade(ctx context.Context, caller types.Address, marketID, orderID uint64) (*processor.Receipt, error) {
	return n.submit(ctx, "cancel_trade", caller, func(ctx context.Context) (interface{}, error) {
		m, err := n.services.factory.GetMarket(marketID)
		if err != nil {
			return nil, err
		}
		return nil, m.CancelTrade(ctx, caller, orderID)
	})
}

func (n *Protocol) InitializeVault(ctx context.Context, caller, asset types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "initialize", caller, func(ctx context.Context) (interface{}, error) {
		return nil, n.services.vault.Initialize(ctx, caller, asset)
	})
}

// MintDust returns the amount of Dust minted.
func (n *Protocol) MintDust(ctx context.Context, caller types.Address, amount *num.Uint) (*processor.Receipt, error) {
	return n.submit(ctx, "mint_dust", caller, func(ctx context.Context) (interface{}, error) {
		return n.services.vault.MintDust(ctx, caller, amount)
	})
}

// Redeem returns the principal paid back.
func (n *Protocol) Redeem(ctx context.Context, caller types.Address, amount *num.Uint) (*processor.Receipt, error) {
	return n.submit(ctx, "redeem", caller, func(ctx context.Context) (interface{}, error) {
		return n.services.vault.Redeem(ctx, caller, amount)
	})
}

// ClaimYield returns the yield paid to the fee receiver.
func (n *Protocol) ClaimYield(ctx context.Context, caller types.Address) (*processor.Receipt, error) {
	return n.submit(ctx, "claim_yield", caller, func(ctx context.Context) (interface{}, error) {
		return n.services.vault.ClaimYield(ctx, caller)
	})
}

func (n *Protocol) Approve(ctx context.Context, caller, asset, spender types.Address, amount *num.Uint) (*processor.Receipt, error) {
	return n.submit(ctx, "approve", caller, func(ctx context.Context) (interface{}, error) {
		tok, err := n.services.token(asset)
		if err != nil {
			return nil, err
		}
		if !tok.Approve(ctx, caller, spender, amount) {
			return nil, types.ErrTransferFailed
		}
		return nil, nil
	})
}

func (n *Protocol) Transfer(ctx context.Context, caller, asset, to types.Address, amount *num.Uint) (*processor.Receipt, error) {
	return n.submit(ctx, "transfer", caller, func(ctx context.Context) (interface{}, error) {
		tok, err := n.services.token(asset)
		if err != nil {
			return nil, err
		}
		if !tok.Transfer(ctx, caller, to, amount) {
			return nil, types.ErrTransferFailed
		}
		return nil, nil
	})
}

func (n *Protocol) GovernanceInfo() (info *rest.GovernanceResponse, err error) {
	err = n.services.processor.View(func() error {
		gov := n.services.governance
		info = &rest.GovernanceResponse{
			Owner:           gov.Owner(),
			DustFlowFactory: gov.DustFlowFactory(),
			QuoteAsset:      gov.QuoteAsset(),
		}
		return nil
	})
	return info, err
}

func (n *Protocol) GetMarketConfig(marketID uint64) (cfg types.MarketConfig, err error) {
	err = n.services.processor.View(func() error {
		cfg = n.services.governance.GetMarketConfig(marketID)
		return nil
	})
	return cfg, err
}

func (n *Protocol) Markets() (records []types.MarketRecord, err error) {
	err = n.services.processor.View(func() error {
		records = n.services.helper.MarketsInfo()
		return nil
	})
	return records, err
}

func (n *Protocol) MarketSummary(marketID uint64) (summary *helper.MarketSummary, err error) {
	now := n.services.processor.GetTimeNow()
	err = n.services.processor.View(func() error {
		summary, err = n.services.helper.MarketSummary(marketID, now)
		return err
	})
	return summary, err
}

func (n *Protocol) GetOrder(marketID, orderID uint64) (order *types.Order, err error) {
	err = n.services.processor.View(func() error {
		m, err := n.services.factory.GetMarket(marketID)
		if err != nil {
			return err
		}
		order, err = m.GetOrder(orderID)
		return err
	})
	return order, err
}

func (n *Protocol) VaultSummary() (summary *helper.VaultSummary, err error) {
	err = n.services.processor.View(func() error {
		summary = n.services.helper.VaultSummary()
		return nil
	})
	return summary, err
}

func (n *Protocol) Assets() (out []rest.AssetResponse, err error) {
	err = n.services.processor.View(func() error {
		for _, addr := range n.services.assets.List() {
			tok, err := n.services.assets.Get(addr)
			if err != nil {
				return err
			}
			a := rest.AssetResponse{Address: addr}
			if d, ok := tok.(assets.Described); ok {
				details := d.Details()
				a.Name, a.Symbol, a.Decimals = details.Name, details.Symbol, details.Decimals
				a.TotalSupply = d.TotalSupply()
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

func (n *Protocol) Balance(asset, account types.Address) (bal *num.Uint, err error) {
	err = n.services.processor.View(func() error {
		tok, err := n.services.token(asset)
		if err != nil {
			return err
		}
		bal = tok.BalanceOf(account)
		return nil
	})
	return bal, err
}

func (n *Protocol) Receipt(txID string) (*processor.Receipt, bool) {
	return n.services.processor.Receipt(txID)
}

// RecentEvents returns the events kept by the node accepted by filter,
// oldest first. A nil filter accepts every event.
func (n *Protocol) RecentEvents(filter func(events.Event) bool) []events.Event {
	out := []events.Event{}
	for _, e := range n.services.recent.Events() {
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	return out
}

// SubscribeEvents streams the events of the given types, all of them when
// none is given, until the returned function is called or ctx is done.
func (n *Protocol) SubscribeEvents(ctx context.Context, evtTypes []events.Type) (<-chan []events.Event, func()) {
	ctx, cancel := context.WithCancel(ctx)
	s := broker.NewStream(ctx, n.services.conf.Broker.StreamBuffer, evtTypes...)
	id := n.services.broker.Subscribe(s)
	return s.Recv(), func() {
		n.services.broker.Unsubscribe(id)
		cancel()
	}
}
