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

package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
)

var ErrBurnExceedsBalance = errors.New("burn amount exceeds balance")

type Broker interface {
	Send(event events.Event)
}

// ERC20 is an in memory token ledger, every mutation is recorded in
// the journal so it rolls back with the transaction that made it.
type ERC20 struct {
	address types.Address
	details assets.Details
	journal *state.Journal
	broker  Broker

	supply     *num.Uint
	balances   map[types.Address]*num.Uint
	allowances map[types.Address]map[types.Address]*num.Uint
}

func New(address types.Address, details assets.Details, journal *state.Journal, broker Broker) *ERC20 {
	return &ERC20{
		address:    address,
		details:    details,
		journal:    journal,
		broker:     broker,
		supply:     num.UintZero(),
		balances:   map[types.Address]*num.Uint{},
		allowances: map[types.Address]map[types.Address]*num.Uint{},
	}
}

func (e *ERC20) Address() types.Address {
	return e.address
}

func (e *ERC20) Details() assets.Details {
	return e.details
}

func (e *ERC20) TotalSupply() *num.Uint {
	return e.supply.Clone()
}

func (e *ERC20) BalanceOf(account types.Address) *num.Uint {
	if b, ok := e.balances[account]; ok {
		return b.Clone()
	}
	return num.UintZero()
}

func (e *ERC20) Allowance(owner, spender types.Address) *num.Uint {
	if a, ok := e.allowances[owner][spender]; ok {
		return a.Clone()
	}
	return num.UintZero()
}

func (e *ERC20) Approve(_ context.Context, owner, spender types.Address, amount *num.Uint) bool {
	if types.IsZeroAddress(owner) || types.IsZeroAddress(spender) {
		return false
	}
	e.setAllowance(owner, spender, amount.Clone())
	return true
}

func (e *ERC20) Transfer(ctx context.Context, from, to types.Address, amount *num.Uint) bool {
	return e.move(ctx, from, to, amount)
}

// TransferFrom moves amount from owner to recipient using the allowance
// owner granted to spender. A max allowance is never consumed.
func (e *ERC20) TransferFrom(ctx context.Context, spender, owner, recipient types.Address, amount *num.Uint) bool {
	if types.IsZeroAddress(recipient) {
		return false
	}
	allowance := e.Allowance(owner, spender)
	if allowance.LT(amount) {
		return false
	}
	if e.BalanceOf(owner).LT(amount) {
		return false
	}
	if !allowance.EQ(num.MaxUint()) {
		e.setAllowance(owner, spender, allowance.Sub(allowance, amount))
	}
	return e.move(ctx, owner, recipient, amount)
}

// Mint creates amount new tokens for to.
func (e *ERC20) Mint(ctx context.Context, to types.Address, amount *num.Uint) error {
	if types.IsZeroAddress(to) {
		return types.ErrInvalidAddress
	}
	supply, overflow := num.UintZero().AddOverflow(e.supply, amount)
	if overflow {
		return types.ErrInvalidAmount
	}
	e.setSupply(supply)
	e.setBalance(to, num.Sum(e.BalanceOf(to), amount))
	e.send(ctx, types.ZeroAddress, to, amount)
	return nil
}

// Burn destroys amount tokens held by from.
func (e *ERC20) Burn(ctx context.Context, from types.Address, amount *num.Uint) error {
	bal := e.BalanceOf(from)
	if bal.LT(amount) {
		return ErrBurnExceedsBalance
	}
	e.setBalance(from, bal.Sub(bal, amount))
	e.setSupply(num.UintZero().Sub(e.supply, amount))
	e.send(ctx, from, types.ZeroAddress, amount)
	return nil
}

func (e *ERC20) move(ctx context.Context, from, to types.Address, amount *num.Uint) bool {
	if types.IsZeroAddress(to) {
		return false
	}
	bal := e.BalanceOf(from)
	if bal.LT(amount) {
		return false
	}
	if amount.IsZero() || from == to {
		return true
	}
	e.setBalance(from, bal.Sub(bal, amount))
	e.setBalance(to, num.Sum(e.BalanceOf(to), amount))
	e.send(ctx, from, to, amount)
	return true
}

func (e *ERC20) send(ctx context.Context, from, to types.Address, amount *num.Uint) {
	if e.broker != nil {
		e.broker.Send(events.NewTransfer(ctx, e.address, from, to, amount))
	}
}

func (e *ERC20) setBalance(account types.Address, v *num.Uint) {
	prev, had := e.balances[account]
	e.journal.Append(func() {
		if had {
			e.balances[account] = prev
		} else {
			delete(e.balances, account)
		}
	})
	e.balances[account] = v
}

func (e *ERC20) setAllowance(owner, spender types.Address, v *num.Uint) {
	byOwner, ok := e.allowances[owner]
	if !ok {
		byOwner = map[types.Address]*num.Uint{}
		e.allowances[owner] = byOwner
	}
	prev, had := byOwner[spender]
	e.journal.Append(func() {
		if had {
			byOwner[spender] = prev
		} else {
			delete(byOwner, spender)
		}
	})
	byOwner[spender] = v
}

func (e *ERC20) setSupply(v *num.Uint) {
	prev := e.supply
	e.journal.Append(func() { e.supply = prev })
	e.supply = v
}

type ledgerState struct {
	Supply     *num.Uint                       `json:"supply"`
	Balances   map[string]*num.Uint            `json:"balances"`
	Allowances map[string]map[string]*num.Uint `json:"allowances"`
}

func (e *ERC20) Namespace() string {
	return fmt.Sprintf("token.%s", e.address.Hex())
}

// GetState serialises the ledger, zero balances are omitted.
func (e *ERC20) GetState() ([]byte, error) {
	st := ledgerState{
		Supply:     e.supply,
		Balances:   map[string]*num.Uint{},
		Allowances: map[string]map[string]*num.Uint{},
	}
	for a, b := range e.balances {
		if !b.IsZero() {
			st.Balances[a.Hex()] = b
		}
	}
	for o, byOwner := range e.allowances {
		m := map[string]*num.Uint{}
		for s, v := range byOwner {
			if !v.IsZero() {
				m[s.Hex()] = v
			}
		}
		if len(m) > 0 {
			st.Allowances[o.Hex()] = m
		}
	}
	return json.Marshal(st)
}

func (e *ERC20) LoadState(_ context.Context, data []byte) error {
	var st ledgerState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	e.supply = num.UintZero()
	if st.Supply != nil {
		e.supply = st.Supply
	}
	e.balances = make(map[types.Address]*num.Uint, len(st.Balances))
	for a, b := range st.Balances {
		addr, err := types.AddressFromString(a)
		if err != nil {
			return err
		}
		e.balances[addr] = b
	}
	e.allowances = make(map[types.Address]map[types.Address]*num.Uint, len(st.Allowances))
	for o, byOwner := range st.Allowances {
		owner, err := types.AddressFromString(o)
		if err != nil {
			return err
		}
		m := make(map[types.Address]*num.Uint, len(byOwner))
		for s, v := range byOwner {
			spender, err := types.AddressFromString(s)
			if err != nil {
				return err
			}
			m[spender] = v
		}
		e.allowances[owner] = m
	}
	return nil
}
