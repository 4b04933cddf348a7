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
	"code.vegaprotocol.io/dustflow/core/assets/builtin"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/pkg/errors"
)

var ErrNoYield = errors.New("no yield to claim")

// State tells whether the vault was initialized.
type State uint8

const (
	StateUninitialized State = 0x00
	StateInitialized   State = 0x01
)

func (s State) String() string {
	if s == StateInitialized {
		return "initialized"
	}
	return "uninitialized"
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

// Roles are the privileged accounts of a vault.
type Roles struct {
	Owner       types.Address
	Manager     types.Address
	FeeReceiver types.Address
}

// Vault takes deposits of a single collateral asset, forwards them to its
// strategy and mints Dust against them at the reserve ratio.
// Vault is also the Dust token: it can be the collateral asset of a market.
type Vault struct {
	log      *logging.Logger
	cfg      Config
	address  types.Address
	roles    Roles
	hint     types.Address
	ratio    *num.Uint
	strategy Strategy
	assets   Assets
	journal  *state.Journal
	broker   Broker

	initialized bool
	asset       types.Address
	token       assets.Token
	position    types.CollateralPosition
	dust        *builtin.ERC20

	locked  bool
	pending []events.Event
}

// New mirrors the vault deployment: roles, the expected collateral asset
// and the strategy principal is forwarded to.
func New(
	log *logging.Logger,
	cfg Config,
	address types.Address,
	roles Roles,
	collateralHint types.Address,
	strategy Strategy,
	tokens Assets,
	journal *state.Journal,
	broker Broker,
) (*Vault, error) {
	if cfg.ReserveRatio == 0 || cfg.ReserveRatio > num.BasisPoints.Uint64() {
		return nil, types.ErrInvalidRatio
	}
	if types.IsZeroAddress(address) || types.IsZeroAddress(roles.Owner) {
		return nil, types.ErrInvalidAddress
	}
	if types.IsZeroAddress(roles.FeeReceiver) {
		roles.FeeReceiver = roles.Owner
	}
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	v := &Vault{
		log:      log,
		cfg:      cfg,
		address:  address,
		roles:    roles,
		hint:     collateralHint,
		ratio:    num.NewUint(cfg.ReserveRatio),
		strategy: strategy,
		assets:   tokens,
		journal:  journal,
		broker:   broker,
		position: types.NewCollateralPosition(),
	}
	v.dust = builtin.New(address, assets.Details{
		Name:     cfg.DustName,
		Symbol:   cfg.DustSymbol,
		Decimals: cfg.DustDecimals,
	}, journal, emitter{v})
	return v, nil
}

// ReloadConf updates the log level, the reserve ratio and the Dust details
// are fixed once deployed.
func (v *Vault) ReloadConf(cfg Config) {
	v.log.Info("reloading configuration")
	if v.log.GetLevel() != cfg.Level.Get() {
		v.log.Info("updating log level",
			logging.String("old", v.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		v.log.SetLevel(cfg.Level.Get())
	}

	v.cfg.Level = cfg.Level
}

func (v *Vault) Address() types.Address {
	return v.address
}

func (v *Vault) Roles() Roles {
	return v.roles
}

// Asset is the collateral asset, zero until initialised.
func (v *Vault) Asset() types.Address {
	return v.asset
}

func (v *Vault) StrategyName() string {
	return v.strategy.Name()
}

// ReserveRatio in basis points.
func (v *Vault) ReserveRatio() *num.Uint {
	return v.ratio.Clone()
}

func (v *Vault) Position() types.CollateralPosition {
	return v.position.Clone()
}

// InitializeState reports whether Initialize went through.
func (v *Vault) InitializeState() State {
	if v.initialized {
		return StateInitialized
	}
	return StateUninitialized
}

// Collateral is the total principal deposited.
func (v *Vault) Collateral() *num.Uint {
	return v.position.TotalDeposited.Clone()
}

// MintFor is the Dust minted for a deposit: floor(principal * ratio / 10000).
func (v *Vault) MintFor(principal *num.Uint) *num.Uint {
	out, overflow := num.UintZero().MulDiv(principal, v.ratio, num.BasisPoints)
	if overflow {
		return num.UintZero()
	}
	return out
}

// PrincipalFor is the principal returned for burning dust: floor(dust * 10000 / ratio).
func (v *Vault) PrincipalFor(dust *num.Uint) *num.Uint {
	out, overflow := num.UintZero().MulDiv(dust, num.BasisPoints, v.ratio)
	if overflow {
		return num.UintZero()
	}
	return out
}

// Initialize sets the collateral asset, a zero asset uses the deployment hint.
func (v *Vault) Initialize(ctx context.Context, caller, asset types.Address) error {
	return v.atomic(func() error {
		if v.initialized {
			return types.ErrAlreadyInitialized
		}
		if caller != v.roles.Owner {
			return types.ErrUnauthorized
		}
		if types.IsZeroAddress(asset) {
			asset = v.hint
		}
		if types.IsZeroAddress(asset) {
			return types.ErrInvalidAddress
		}
		if !types.IsZeroAddress(v.hint) && asset != v.hint {
			return errors.Wrapf(types.ErrInvalidAddress, "vault was deployed for %s", v.hint.Hex())
		}
		token, err := v.assets.Get(asset)
		if err != nil {
			return err
		}

		prevAsset, prevToken := v.asset, v.token
		v.journal.Append(func() {
			v.initialized = false
			v.asset, v.token = prevAsset, prevToken
		})
		v.initialized = true
		v.asset, v.token = asset, token

		v.log.Info("vault initialized",
			logging.Address("asset", asset),
			logging.String("strategy", v.strategy.Name()),
		)
		v.emit(events.NewVaultInitialized(ctx, asset))
		return nil
	})
}

// MintDust deposits amount of the collateral asset and mints Dust to the caller.
func (v *Vault) MintDust(ctx context.Context, caller types.Address, amount *num.Uint) (*num.Uint, error) {
	var minted *num.Uint
	err := v.atomic(func() error {
		if !v.initialized {
			return types.ErrNotInitialized
		}
		if amount == nil || amount.IsZero() {
			return types.ErrInvalidAmount
		}
		if types.IsZeroAddress(caller) {
			return types.ErrInvalidAddress
		}
		minted = v.MintFor(amount)
		if minted.IsZero() {
			return types.ErrInvalidAmount
		}
		if v.token.Allowance(caller, v.address).LT(amount) {
			return types.ErrInsufficientAllowance
		}
		if !v.token.TransferFrom(ctx, v.address, caller, v.address, amount) {
			return types.ErrTransferFailed
		}

		v.setPosition(types.CollateralPosition{
			TotalDeposited:            num.Sum(v.position.TotalDeposited, amount),
			TotalMinted:               num.Sum(v.position.TotalMinted, minted),
			ExternalPrincipalDeployed: v.position.ExternalPrincipalDeployed,
		})
		if err := v.dust.Mint(ctx, caller, minted); err != nil {
			return err
		}

		if err := v.strategy.Deploy(ctx, v.token, v.asset, amount); err != nil {
			return err
		}
		pos := v.position.Clone()
		pos.ExternalPrincipalDeployed.Add(pos.ExternalPrincipalDeployed, amount)
		v.setPosition(pos)

		v.log.Debug("dust minted",
			logging.Address("party", caller),
			logging.BigUint("principal", amount),
			logging.BigUint("dust", minted),
		)
		v.emit(events.NewDustMinted(ctx, caller, amount, minted, v.position.Clone()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// Redeem burns dust of the caller and pays back the matching principal.
func (v *Vault) Redeem(ctx context.Context, caller types.Address, dust *num.Uint) (*num.Uint, error) {
	var principal *num.Uint
	err := v.atomic(func() error {
		if !v.initialized {
			return types.ErrNotInitialized
		}
		if dust == nil || dust.IsZero() {
			return types.ErrInvalidAmount
		}
		if v.dust.BalanceOf(caller).LT(dust) {
			return types.ErrInsufficientBalance
		}
		principal = v.PrincipalFor(dust)
		if principal.IsZero() || v.position.ExternalPrincipalDeployed.LT(principal) {
			return types.ErrInsufficientBalance
		}

		if err := v.dust.Burn(ctx, caller, dust); err != nil {
			return err
		}
		v.setPosition(types.CollateralPosition{
			TotalDeposited:            num.UintZero().Sub(v.position.TotalDeposited, principal),
			TotalMinted:               num.UintZero().Sub(v.position.TotalMinted, dust),
			ExternalPrincipalDeployed: num.UintZero().Sub(v.position.ExternalPrincipalDeployed, principal),
		})

		paid, err := v.strategy.Withdraw(ctx, v.token, v.asset, principal, caller)
		if err != nil {
			return err
		}
		if !paid.EQ(principal) {
			return types.ErrReconciliationMismatch
		}

		v.log.Debug("dust redeemed",
			logging.Address("party", caller),
			logging.BigUint("principal", principal),
			logging.BigUint("dust", dust),
		)
		v.emit(events.NewDustRedeemed(ctx, caller, principal, dust, v.position.Clone()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// Reconcile checks the strategy still covers the deployed principal and
// returns the surplus.
func (v *Vault) Reconcile() (*num.Uint, error) {
	if !v.initialized {
		return nil, types.ErrNotInitialized
	}
	holdings := v.strategy.Holdings(v.token, v.asset)
	surplus, negative := num.UintZero().SubOverflow(holdings, v.position.ExternalPrincipalDeployed)
	if negative {
		v.log.Error("vault under collateralised",
			logging.BigUint("holdings", holdings),
			logging.BigUint("deployed", v.position.ExternalPrincipalDeployed),
		)
		return nil, types.ErrReconciliationMismatch
	}
	return surplus, nil
}

// ClaimYield pays the surplus over the deployed principal to the fee receiver.
func (v *Vault) ClaimYield(ctx context.Context, caller types.Address) (*num.Uint, error) {
	var surplus *num.Uint
	err := v.atomic(func() error {
		if caller != v.roles.Owner && caller != v.roles.Manager {
			return types.ErrUnauthorized
		}
		var err error
		if surplus, err = v.Reconcile(); err != nil {
			return err
		}
		if surplus.IsZero() {
			return ErrNoYield
		}
		paid, err := v.strategy.Withdraw(ctx, v.token, v.asset, surplus, v.roles.FeeReceiver)
		if err != nil {
			return err
		}
		surplus = paid

		v.log.Info("yield claimed",
			logging.Address("fee-receiver", v.roles.FeeReceiver),
			logging.BigUint("amount", paid),
		)
		v.emit(events.NewYieldClaimed(ctx, v.roles.FeeReceiver, paid, v.position.Clone()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return surplus, nil
}

func (v *Vault) setPosition(pos types.CollateralPosition) {
	prev := v.position
	v.journal.Append(func() { v.position = prev })
	v.position = pos
}

// atomic runs fn under the reentrancy guard inside a journal snapshot.
// Events emitted by fn are only sent if it succeeds.
func (v *Vault) atomic(fn func() error) error {
	if v.locked {
		return types.ErrReentrantCall
	}
	v.locked = true
	defer func() { v.locked = false }()

	snap := v.journal.Snapshot()
	v.pending = nil
	if err := fn(); err != nil {
		v.journal.RevertToSnapshot(snap)
		v.pending = nil
		v.log.Debug("vault call reverted", logging.Error(err))
		return err
	}
	if len(v.pending) > 0 {
		v.broker.SendBatch(v.pending)
	}
	v.pending = nil
	return nil
}

func (v *Vault) emit(e events.Event) {
	if v.locked {
		v.pending = append(v.pending, e)
		return
	}
	v.broker.Send(e)
}

// emitter routes the Dust ledger events through the vault.
type emitter struct {
	v *Vault
}

func (e emitter) Send(evt events.Event) {
	e.v.emit(evt)
}
