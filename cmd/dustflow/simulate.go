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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"code.vegaprotocol.io/dustflow/config"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/protocol"
	"code.vegaprotocol.io/dustflow/core/snapshot"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/jessevdk/go-flags"
)

const settlementDuration = 864000 * time.Second

type SimulateCmd struct {
	Amount string `long:"amount" default:"100000000" description:"Size of the order placed and matched"`
	Price  string `long:"price" default:"200000" description:"Price of the order placed and matched"`
	Mint   string `long:"mint" default:"1000000" description:"Principal deposited in the vault"`
}

var simulateCmd SimulateCmd

func (opts *SimulateCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()
	log.SetLevel(logging.WarnLevel)

	s := &simulation{
		amount: parseAmount(opts.Amount),
		price:  parseAmount(opts.Price),
		mint:   parseAmount(opts.Mint),
		out:    newPrinter(os.Stdout),
	}
	if s.amount == nil || s.price == nil || s.mint == nil {
		return fmt.Errorf("amount, price and mint must be base 10 integers")
	}
	return s.run(context.Background(), log)
}

func parseAmount(s string) *num.Uint {
	u, overflow := num.UintFromString(s, 10)
	if overflow {
		return nil
	}
	return u
}

// simulation deploys an in memory node and replays the deployment
// scripts against it: a market on the test token, the vault initialized
// with the quote asset, an order placed by the owner and matched by a trader.
type simulation struct {
	amount, price, mint *num.Uint
	out                 *printer

	owner, trader types.Address
	node          *protocol.Protocol
}

func (s *simulation) genesis() (config.Config, error) {
	ownerKey, err := vgcrypto.GenerateKey()
	if err != nil {
		return config.Config{}, err
	}
	traderKey, err := vgcrypto.GenerateKey()
	if err != nil {
		return config.Config{}, err
	}
	s.owner, s.trader = vgcrypto.KeyAddress(ownerKey), vgcrypto.KeyAddress(traderKey)

	cfg := config.NewDefaultConfig()
	cfg.Snapshot = snapshot.NewTestConfig()
	cfg.API.Enabled = false
	cfg.Genesis.Owner = encoding.Address{Address: s.owner}
	for i := range cfg.Genesis.Assets {
		cfg.Genesis.Assets[i].Allocations = map[string]string{
			s.owner.Hex():  "1000000000000000000000000",
			s.trader.Hex(): "1000000000000000000000000",
		}
	}
	return cfg, nil
}

func (s *simulation) run(ctx context.Context, log *logging.Logger) error {
	cfg, err := s.genesis()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.node, err = protocol.New(ctx, log, cfg, "")
	if err != nil {
		return err
	}
	s.node.Start(ctx)
	defer func() {
		cancel()
		<-s.node.Done()
		s.node.Stop()
	}()

	dtt, _ := cfg.Genesis.AssetBySymbol("DTT")
	weth, _ := cfg.Genesis.AssetBySymbol("WETH")
	usdc, _ := cfg.Genesis.AssetBySymbol("USDC")
	vault := cfg.Genesis.VaultAddress.Get()

	s.out.title("Deployment")
	s.out.field("owner", s.owner.Hex())
	s.out.field("trader", s.trader.Hex())

	if err := s.step("set market config 0", func() (*processor.Receipt, error) {
		return s.node.SetMarketConfig(ctx, s.owner, 0, settlementDuration, dtt.Address.Get())
	}); err != nil {
		return err
	}
	var market types.Address
	if err := s.step("create market", func() (*processor.Receipt, error) {
		r, err := s.node.CreateMarket(ctx, s.owner)
		if err == nil {
			market = r.Result.(types.MarketRecord).MarketAddress
		}
		return r, err
	}); err != nil {
		return err
	}
	if err := s.step("set market config 1", func() (*processor.Receipt, error) {
		return s.node.SetMarketConfig(ctx, s.owner, 1, settlementDuration, weth.Address.Get())
	}); err != nil {
		return err
	}

	s.out.title("Vault")
	steps := []struct {
		name string
		fn   func() (*processor.Receipt, error)
	}{
		{"initialize", func() (*processor.Receipt, error) {
			return s.node.InitializeVault(ctx, s.owner, types.ZeroAddress)
		}},
		{"approve collateral", func() (*processor.Receipt, error) {
			return s.node.Approve(ctx, s.owner, usdc.Address.Get(), vault, s.mint)
		}},
		{"mint dust", func() (*processor.Receipt, error) {
			return s.node.MintDust(ctx, s.owner, s.mint)
		}},
	}
	for _, st := range steps {
		if err := s.step(st.name, st.fn); err != nil {
			return err
		}
	}

	s.out.title("Orders")
	quote, overflow := num.UintZero().MulDiv(s.amount, s.price, cfg.Markets.Matching.PriceScale())
	if overflow {
		return fmt.Errorf("order value overflows")
	}
	steps = []struct {
		name string
		fn   func() (*processor.Receipt, error)
	}{
		{"approve base", func() (*processor.Receipt, error) {
			return s.node.Approve(ctx, s.owner, dtt.Address.Get(), market, s.amount)
		}},
		{"put trade", func() (*processor.Receipt, error) {
			return s.node.PutTrade(ctx, s.owner, 0, types.SideSell, s.amount, s.price)
		}},
		{"approve quote", func() (*processor.Receipt, error) {
			return s.node.Approve(ctx, s.trader, usdc.Address.Get(), market, quote)
		}},
		{"match trade", func() (*processor.Receipt, error) {
			return s.node.MatchTrade(ctx, s.trader, 0, types.SideBuy, s.amount, s.price, []uint64{0})
		}},
	}
	for _, st := range steps {
		if err := s.step(st.name, st.fn); err != nil {
			return err
		}
	}
	return s.summary(market)
}

func (s *simulation) step(name string, fn func() (*processor.Receipt, error)) error {
	r, err := fn()
	s.out.receipt(name, r, err)
	return err
}

func (s *simulation) summary(market types.Address) error {
	s.out.title("Summary")
	m, err := s.node.MarketSummary(0)
	if err != nil {
		return err
	}
	s.out.field("market", market.Hex())
	s.out.field("bids", len(m.Bids))
	s.out.field("asks", len(m.Asks))

	v, err := s.node.VaultSummary()
	if err != nil {
		return err
	}
	s.out.field("vault", v.State)
	s.out.field("dust supply", v.DustSupply)
	return nil
}

func Simulate(ctx context.Context, parser *flags.Parser) error {
	simulateCmd = SimulateCmd{}

	short := "Replays a deployment in memory"
	long := "Deploy an in memory node, create a market, mint dust and match an order against it"

	_, err := parser.AddCommand("simulate", short, long, &simulateCmd)
	return err
}
