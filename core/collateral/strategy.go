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

package collateral

import (
	"context"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/core/yield"
	"code.vegaprotocol.io/dustflow/libs/num"

	"github.com/pkg/errors"
)

// Strategy is where the vault keeps the principal it received.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/strategy_mock.go -package mocks code.vegaprotocol.io/dustflow/core/collateral Strategy
type Strategy interface {
	Name() string
	// Deploy forwards amount of asset held by the vault.
	Deploy(ctx context.Context, token assets.Token, asset types.Address, amount *num.Uint) error
	// Withdraw pays amount of asset out of the strategy to to.
	Withdraw(ctx context.Context, token assets.Token, asset types.Address, amount *num.Uint, to types.Address) (*num.Uint, error)
	// Holdings is what the strategy could return right now.
	Holdings(token assets.Token, asset types.Address) *num.Uint
}

// HoldStrategy keeps the principal on the vault balance.
type HoldStrategy struct {
	vault types.Address
}

func NewHoldStrategy(vault types.Address) *HoldStrategy {
	return &HoldStrategy{vault: vault}
}

func (h *HoldStrategy) Name() string { return "hold" }

func (h *HoldStrategy) Deploy(_ context.Context, _ assets.Token, _ types.Address, _ *num.Uint) error {
	return nil
}

func (h *HoldStrategy) Withdraw(ctx context.Context, token assets.Token, _ types.Address, amount *num.Uint, to types.Address) (*num.Uint, error) {
	if !token.Transfer(ctx, h.vault, to, amount) {
		return nil, types.ErrTransferFailed
	}
	return amount.Clone(), nil
}

func (h *HoldStrategy) Holdings(token assets.Token, _ types.Address) *num.Uint {
	return token.BalanceOf(h.vault)
}

// PoolStrategy supplies the principal to a yield pool on behalf of the
// vault, the pool position accrues the interest.
type PoolStrategy struct {
	vault types.Address
	pool  yield.Pool
}

func NewPoolStrategy(vault types.Address, pool yield.Pool) *PoolStrategy {
	return &PoolStrategy{vault: vault, pool: pool}
}

func (p *PoolStrategy) Name() string { return "pool" }

func (p *PoolStrategy) Deploy(ctx context.Context, token assets.Token, asset types.Address, amount *num.Uint) error {
	if !token.Approve(ctx, p.vault, p.pool.Address(), amount) {
		return types.ErrTransferFailed
	}
	return errors.Wrap(p.pool.Supply(ctx, p.vault, asset, amount, p.vault), "supply to pool")
}

func (p *PoolStrategy) Withdraw(ctx context.Context, _ assets.Token, asset types.Address, amount *num.Uint, to types.Address) (*num.Uint, error) {
	out, err := p.pool.Withdraw(ctx, p.vault, asset, amount, to)
	if err != nil {
		return nil, errors.Wrap(err, "withdraw from pool")
	}
	return out, nil
}

func (p *PoolStrategy) Holdings(_ assets.Token, asset types.Address) *num.Uint {
	return p.pool.BalanceOf(asset, p.vault)
}
