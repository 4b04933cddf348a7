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

package events

import (
	"context"
	"strings"

	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
)

type VaultInitialized struct {
	*Base
	asset types.Address
}

func NewVaultInitialized(ctx context.Context, asset types.Address) *VaultInitialized {
	return &VaultInitialized{
		Base:  newBase(ctx, VaultInitializedEvent),
		asset: asset,
	}
}

func (v VaultInitialized) Asset() types.Address {
	return v.asset
}

// VaultMovement is used for mints, redemptions and yield claims.
type VaultMovement struct {
	*Base
	party     types.Address
	principal *num.Uint
	dust      *num.Uint
	position  types.CollateralPosition
}

func newVaultMovement(ctx context.Context, t Type, party types.Address, principal, dust *num.Uint, pos types.CollateralPosition) *VaultMovement {
	return &VaultMovement{
		Base:      newBase(ctx, t),
		party:     party,
		principal: principal.Clone(),
		dust:      dust.Clone(),
		position:  pos.Clone(),
	}
}

func NewDustMinted(ctx context.Context, party types.Address, principal, dust *num.Uint, pos types.CollateralPosition) *VaultMovement {
	return newVaultMovement(ctx, DustMintedEvent, party, principal, dust, pos)
}

func NewDustRedeemed(ctx context.Context, party types.Address, principal, dust *num.Uint, pos types.CollateralPosition) *VaultMovement {
	return newVaultMovement(ctx, DustRedeemedEvent, party, principal, dust, pos)
}

func NewYieldClaimed(ctx context.Context, receiver types.Address, amount *num.Uint, pos types.CollateralPosition) *VaultMovement {
	return newVaultMovement(ctx, YieldClaimedEvent, receiver, amount, num.UintZero(), pos)
}

func (v VaultMovement) IsParty(addr string) bool {
	return strings.EqualFold(v.party.Hex(), addr)
}

func (v VaultMovement) Party() types.Address {
	return v.party
}

func (v VaultMovement) Principal() *num.Uint {
	return v.principal.Clone()
}

func (v VaultMovement) Dust() *num.Uint {
	return v.dust.Clone()
}

func (v VaultMovement) Position() types.CollateralPosition {
	return v.position.Clone()
}

// Transfer is a token balance movement of the builtin ledger.
type Transfer struct {
	*Base
	token, from, to types.Address
	amount          *num.Uint
}

func NewTransfer(ctx context.Context, token, from, to types.Address, amount *num.Uint) *Transfer {
	return &Transfer{
		Base:   newBase(ctx, TransferEvent),
		token:  token,
		from:   from,
		to:     to,
		amount: amount.Clone(),
	}
}

func (t Transfer) IsParty(addr string) bool {
	return strings.EqualFold(t.from.Hex(), addr) || strings.EqualFold(t.to.Hex(), addr)
}

func (t Transfer) Token() types.Address { return t.token }
func (t Transfer) From() types.Address  { return t.from }
func (t Transfer) To() types.Address    { return t.to }
func (t Transfer) Amount() *num.Uint    { return t.amount.Clone() }
