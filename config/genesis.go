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

package config

import (
	"fmt"
	"strings"

	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/libs/num"

	"github.com/pkg/errors"
)

const (
	StrategyPool = "pool"
	StrategyHold = "hold"
)

var (
	ErrMissingOwner      = errors.New("genesis owner is not set")
	ErrInvalidStrategy   = errors.New("genesis strategy must be pool or hold")
	ErrDuplicatedAddress = errors.New("genesis addresses must be distinct")
	ErrUnknownAsset      = errors.New("genesis asset is not declared")
)

// Genesis is the initial deployment of a node: the privileged accounts,
// the addresses of the protocol components and the tokens.
type Genesis struct {
	Owner       encoding.Address `long:"owner" description:"governance and vault owner"`
	Manager     encoding.Address `long:"manager" description:"vault manager, the owner when empty"`
	FeeReceiver encoding.Address `long:"fee-receiver" description:"receiver of the vault yield, the owner when empty"`

	FactoryAddress encoding.Address `long:"factory-address"`
	VaultAddress   encoding.Address `long:"vault-address"`
	PoolAddress    encoding.Address `long:"pool-address"`

	// ActivateFactory registers FactoryAddress as the active factory at startup.
	ActivateFactory encoding.Bool    `long:"activate-factory" choice:"true" choice:"false"`
	Strategy        string           `long:"strategy" choice:"pool" choice:"hold" description:"where the vault keeps its principal"`
	QuoteAsset      encoding.Address `long:"quote-asset" description:"asset buyers pay with on every market"`
	CollateralAsset encoding.Address `long:"collateral-asset" description:"asset the vault is expected to be initialized with"`

	Assets []GenesisAsset `no-flag:"true"`
}

// GenesisAsset is a token created at startup, Allocations maps an account
// to the base 10 amount minted to it.
type GenesisAsset struct {
	Address     encoding.Address  `toml:"address"`
	Name        string            `toml:"name"`
	Symbol      string            `toml:"symbol"`
	Decimals    uint32            `toml:"decimals"`
	Allocations map[string]string `toml:"allocations"`
}

func NewDefaultGenesis() Genesis {
	return Genesis{
		FactoryAddress:  mustAddress("0x97eC4D44298b4E2C39dD4c0a841b12eC16616356"),
		VaultAddress:    mustAddress("0xFA8B026CaA2d1d73CE8A9f19613364FCa9440411"),
		PoolAddress:     mustAddress("0xa5281122370d997c005B2313373Fa3CAf6A48Ae0"),
		ActivateFactory: true,
		Strategy:        StrategyPool,
		QuoteAsset:      mustAddress("0xDF914A54fD5081FF5001b225191Cf41C8A40abF4"),
		CollateralAsset: mustAddress("0xDF914A54fD5081FF5001b225191Cf41C8A40abF4"),
		Assets: []GenesisAsset{
			{
				Address:  mustAddress("0xDF914A54fD5081FF5001b225191Cf41C8A40abF4"),
				Name:     "DustFlow Test USDC",
				Symbol:   "USDC",
				Decimals: 6,
			},
			{
				Address:  mustAddress("0x183598b50174566b46bd419b392c1B8FC9087cB3"),
				Name:     "DustFlow Test Token",
				Symbol:   "DTT",
				Decimals: 18,
			},
			{
				Address:  mustAddress("0x0B89A5452bee7e40331af133379c24735E2001Ef"),
				Name:     "Test WETH Token",
				Symbol:   "WETH",
				Decimals: 18,
			},
		},
	}
}

// Validate checks the genesis can be deployed.
func (g Genesis) Validate() error {
	if types.IsZeroAddress(g.Owner.Get()) {
		return ErrMissingOwner
	}
	if g.Strategy != StrategyPool && g.Strategy != StrategyHold {
		return ErrInvalidStrategy
	}

	seen := map[types.Address]struct{}{}
	for _, a := range g.componentAddresses() {
		if types.IsZeroAddress(a) {
			return errors.Wrap(types.ErrInvalidAddress, "genesis component")
		}
		if _, ok := seen[a]; ok {
			return errors.Wrap(ErrDuplicatedAddress, a.Hex())
		}
		seen[a] = struct{}{}
	}

	for _, asset := range g.Assets {
		addr := asset.Address.Get()
		if types.IsZeroAddress(addr) {
			return errors.Wrapf(types.ErrInvalidAddress, "asset %s", asset.Symbol)
		}
		if _, ok := seen[addr]; ok {
			return errors.Wrap(ErrDuplicatedAddress, addr.Hex())
		}
		seen[addr] = struct{}{}
		if _, err := asset.ParseAllocations(); err != nil {
			return err
		}
	}

	if q := g.QuoteAsset.Get(); !types.IsZeroAddress(q) && !g.declares(q) {
		return errors.Wrapf(ErrUnknownAsset, "quote asset %s", q.Hex())
	}
	if c := g.CollateralAsset.Get(); !types.IsZeroAddress(c) && !g.declares(c) {
		return errors.Wrapf(ErrUnknownAsset, "collateral asset %s", c.Hex())
	}
	return nil
}

// ManagerOrOwner returns the vault manager.
func (g Genesis) ManagerOrOwner() types.Address {
	if types.IsZeroAddress(g.Manager.Get()) {
		return g.Owner.Get()
	}
	return g.Manager.Get()
}

// AssetBySymbol finds a declared asset, the match ignores the case.
func (g Genesis) AssetBySymbol(symbol string) (GenesisAsset, bool) {
	for _, a := range g.Assets {
		if strings.EqualFold(a.Symbol, symbol) {
			return a, true
		}
	}
	return GenesisAsset{}, false
}

func (g Genesis) componentAddresses() []types.Address {
	return []types.Address{
		g.FactoryAddress.Get(),
		g.VaultAddress.Get(),
		g.PoolAddress.Get(),
	}
}

// declares tells if addr is a genesis token or the vault Dust token.
func (g Genesis) declares(addr types.Address) bool {
	if addr == g.VaultAddress.Get() {
		return true
	}
	for _, a := range g.Assets {
		if a.Address.Get() == addr {
			return true
		}
	}
	return false
}

// ParseAllocations decodes the allocations of the asset.
func (a GenesisAsset) ParseAllocations() (map[types.Address]*num.Uint, error) {
	out := make(map[types.Address]*num.Uint, len(a.Allocations))
	for account, amount := range a.Allocations {
		addr, err := types.AddressFromString(account)
		if err != nil {
			return nil, errors.Wrapf(err, "allocation of %s", a.Symbol)
		}
		v, overflow := num.UintFromString(amount, 10)
		if overflow {
			return nil, fmt.Errorf("invalid allocation %q of %s to %s", amount, a.Symbol, account)
		}
		out[addr] = v
	}
	return out, nil
}

func mustAddress(s string) encoding.Address {
	return encoding.Address{Address: types.MustAddress(s)}
}
