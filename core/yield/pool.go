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

package yield

import (
	"context"
	"encoding/json"
	"sort"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedAsset   = errors.New("asset is not listed in the pool")
	ErrNothingSupplied    = errors.New("no liquidity supplied for asset")
	ErrWithdrawTooLarge   = errors.New("withdraw amount exceeds supplied balance")
	ErrPoolTransferFailed = errors.New("pool token transfer failed")
)

// Pool is the yield bearing venue a vault deploys principal to.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/pool_mock.go -package mocks code.vegaprotocol.io/dustflow/core/yield Pool
type Pool interface {
	Address() types.Address
	Supply(ctx context.Context, caller, asset types.Address, amount *num.Uint, onBehalfOf types.Address) error
	Withdraw(ctx context.Context, caller, asset types.Address, amount *num.Uint, to types.Address) (*num.Uint, error)
	BalanceOf(asset, account types.Address) *num.Uint
}

// Assets resolves token addresses.
type Assets interface {
	Get(addr types.Address) (assets.Token, error)
}

type reserve struct {
	supplied map[types.Address]*num.Uint
	total    *num.Uint
	index    num.Decimal
}

// MemPool is an in-memory lending pool. Interest paid into a reserve is
// credited pro rata to suppliers, rounding leftovers stay in the pool.
type MemPool struct {
	log     *logging.Logger
	cfg     Config
	address types.Address
	assets  Assets
	journal *state.Journal

	reserves map[types.Address]*reserve
}

func New(log *logging.Logger, cfg Config, address types.Address, assets Assets, journal *state.Journal) *MemPool {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &MemPool{
		log:      log,
		cfg:      cfg,
		address:  address,
		assets:   assets,
		journal:  journal,
		reserves: map[types.Address]*reserve{},
	}
}

func (p *MemPool) ReloadConf(cfg Config) {
	p.log.Info("reloading configuration")
	if p.log.GetLevel() != cfg.Level.Get() {
		p.log.Info("updating log level",
			logging.String("old", p.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		p.log.SetLevel(cfg.Level.Get())
	}

	p.cfg = cfg
}

func (p *MemPool) Address() types.Address {
	return p.address
}

// ListAsset enables supplies of asset.
func (p *MemPool) ListAsset(asset types.Address) error {
	if _, err := p.assets.Get(asset); err != nil {
		return err
	}
	if _, ok := p.reserves[asset]; ok {
		return nil
	}
	p.reserves[asset] = &reserve{
		supplied: map[types.Address]*num.Uint{},
		total:    num.UintZero(),
		index:    num.DecimalOne(),
	}
	p.journal.Append(func() { delete(p.reserves, asset) })
	return nil
}

// Supply pulls amount of asset from caller and credits onBehalfOf.
func (p *MemPool) Supply(ctx context.Context, caller, asset types.Address, amount *num.Uint, onBehalfOf types.Address) error {
	r, ok := p.reserves[asset]
	if !ok {
		return ErrUnsupportedAsset
	}
	if amount.IsZero() {
		return types.ErrInvalidAmount
	}
	tok, err := p.assets.Get(asset)
	if err != nil {
		return err
	}
	if !tok.TransferFrom(ctx, p.address, caller, p.address, amount) {
		return ErrPoolTransferFailed
	}
	p.credit(r, onBehalfOf, amount)
	p.log.Debug("liquidity supplied",
		logging.Address("asset", asset),
		logging.Address("on-behalf-of", onBehalfOf),
		logging.BigUint("amount", amount),
	)
	return nil
}

// Withdraw burns amount of the caller position and pays it to to.
// A max amount withdraws the whole position.
func (p *MemPool) Withdraw(ctx context.Context, caller, asset types.Address, amount *num.Uint, to types.Address) (*num.Uint, error) {
	r, ok := p.reserves[asset]
	if !ok {
		return nil, ErrUnsupportedAsset
	}
	if amount.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	bal := p.BalanceOf(asset, caller)
	if bal.IsZero() {
		return nil, ErrNothingSupplied
	}
	if amount.EQ(num.MaxUint()) {
		amount = bal
	}
	if bal.LT(amount) {
		return nil, ErrWithdrawTooLarge
	}
	tok, err := p.assets.Get(asset)
	if err != nil {
		return nil, err
	}
	p.debit(r, caller, amount)
	if !tok.Transfer(ctx, p.address, to, amount) {
		return nil, ErrPoolTransferFailed
	}
	return amount.Clone(), nil
}

// PayInterest transfers amount from payer into the reserve and
// distributes it to the suppliers.
func (p *MemPool) PayInterest(ctx context.Context, payer, asset types.Address, amount *num.Uint) error {
	r, ok := p.reserves[asset]
	if !ok {
		return ErrUnsupportedAsset
	}
	if r.total.IsZero() {
		return ErrNothingSupplied
	}
	tok, err := p.assets.Get(asset)
	if err != nil {
		return err
	}
	if !tok.TransferFrom(ctx, p.address, payer, p.address, amount) {
		return ErrPoolTransferFailed
	}

	total := r.total.Clone()
	accounts := make([]types.Address, 0, len(r.supplied))
	for a := range r.supplied {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Cmp(accounts[j]) < 0 })
	for _, a := range accounts {
		share, _ := num.UintZero().MulDiv(r.supplied[a], amount, total)
		if !share.IsZero() {
			p.credit(r, a, share)
		}
	}

	prevIndex := r.index
	growth := num.DecimalFromUint(amount).Div(num.DecimalFromUint(total))
	r.index = r.index.Mul(num.DecimalOne().Add(growth))
	p.journal.Append(func() { r.index = prevIndex })
	return nil
}

func (p *MemPool) BalanceOf(asset, account types.Address) *num.Uint {
	r, ok := p.reserves[asset]
	if !ok {
		return num.UintZero()
	}
	if b, ok := r.supplied[account]; ok {
		return b.Clone()
	}
	return num.UintZero()
}

// TotalSupplied is the sum of every position of asset.
func (p *MemPool) TotalSupplied(asset types.Address) *num.Uint {
	if r, ok := p.reserves[asset]; ok {
		return r.total.Clone()
	}
	return num.UintZero()
}

// LiquidityIndex is the cumulative growth of one unit supplied at listing.
func (p *MemPool) LiquidityIndex(asset types.Address) num.Decimal {
	if r, ok := p.reserves[asset]; ok {
		return r.index
	}
	return num.DecimalZero()
}

func (p *MemPool) credit(r *reserve, account types.Address, amount *num.Uint) {
	p.setSupplied(r, account, num.Sum(p.balance(r, account), amount))
	p.setTotal(r, num.Sum(r.total, amount))
}

func (p *MemPool) debit(r *reserve, account types.Address, amount *num.Uint) {
	p.setSupplied(r, account, num.UintZero().Sub(p.balance(r, account), amount))
	p.setTotal(r, num.UintZero().Sub(r.total, amount))
}

func (p *MemPool) balance(r *reserve, account types.Address) *num.Uint {
	if b, ok := r.supplied[account]; ok {
		return b
	}
	return num.UintZero()
}

func (p *MemPool) setSupplied(r *reserve, account types.Address, v *num.Uint) {
	prev, had := r.supplied[account]
	p.journal.Append(func() {
		if had {
			r.supplied[account] = prev
		} else {
			delete(r.supplied, account)
		}
	})
	r.supplied[account] = v
}

func (p *MemPool) setTotal(r *reserve, v *num.Uint) {
	prev := r.total
	p.journal.Append(func() { r.total = prev })
	r.total = v
}

type reserveState struct {
	Supplied map[string]*num.Uint `json:"supplied"`
	Index    string               `json:"index"`
}

func (p *MemPool) Namespace() string {
	return "yield." + p.address.Hex()
}

func (p *MemPool) GetState() ([]byte, error) {
	st := map[string]reserveState{}
	for asset, r := range p.reserves {
		rs := reserveState{Supplied: map[string]*num.Uint{}, Index: r.index.String()}
		for a, b := range r.supplied {
			if !b.IsZero() {
				rs.Supplied[a.Hex()] = b
			}
		}
		st[asset.Hex()] = rs
	}
	return json.Marshal(st)
}

func (p *MemPool) LoadState(_ context.Context, data []byte) error {
	st := map[string]reserveState{}
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	p.reserves = make(map[types.Address]*reserve, len(st))
	for a, rs := range st {
		asset, err := types.AddressFromString(a)
		if err != nil {
			return err
		}
		idx, err := num.DecimalFromString(rs.Index)
		if err != nil {
			return err
		}
		r := &reserve{supplied: map[types.Address]*num.Uint{}, total: num.UintZero(), index: idx}
		for acc, b := range rs.Supplied {
			addr, err := types.AddressFromString(acc)
			if err != nil {
				return err
			}
			r.supplied[addr] = b
			r.total.AddSum(b)
		}
		p.reserves[asset] = r
	}
	return nil
}
