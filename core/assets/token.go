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

package assets

import (
	"context"

	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
)

// Token is the fungible token primitive used by markets and vaults.
// A false return from a mutating call means nothing was moved.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/token_mock.go -package mocks code.vegaprotocol.io/dustflow/core/assets Token
type Token interface {
	BalanceOf(account types.Address) *num.Uint
	Allowance(owner, spender types.Address) *num.Uint
	Approve(ctx context.Context, owner, spender types.Address, amount *num.Uint) bool
	Transfer(ctx context.Context, from, to types.Address, amount *num.Uint) bool
	TransferFrom(ctx context.Context, spender, owner, recipient types.Address, amount *num.Uint) bool
}

// Details describes a registered token.
type Details struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
}

// Described is implemented by tokens exposing their details.
type Described interface {
	Details() Details
	TotalSupply() *num.Uint
}
