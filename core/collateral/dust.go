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
	"code.vegaprotocol.io/dustflow/libs/num"
)

// The vault is the Dust token. Dust cannot move while a vault call is in
// progress.

func (v *Vault) Details() assets.Details {
	return v.dust.Details()
}

func (v *Vault) TotalSupply() *num.Uint {
	return v.dust.TotalSupply()
}

func (v *Vault) BalanceOf(account types.Address) *num.Uint {
	return v.dust.BalanceOf(account)
}

func (v *Vault) Allowance(owner, spender types.Address) *num.Uint {
	return v.dust.Allowance(owner, spender)
}

func (v *Vault) Approve(ctx context.Context, owner, spender types.Address, amount *num.Uint) bool {
	if v.locked {
		return false
	}
	return v.dust.Approve(ctx, owner, spender, amount)
}

func (v *Vault) Transfer(ctx context.Context, from, to types.Address, amount *num.Uint) bool {
	if v.locked {
		return false
	}
	return v.dust.Transfer(ctx, from, to, amount)
}

func (v *Vault) TransferFrom(ctx context.Context, spender, owner, recipient types.Address, amount *num.Uint) bool {
	if v.locked {
		return false
	}
	return v.dust.TransferFrom(ctx, spender, owner, recipient, amount)
}
