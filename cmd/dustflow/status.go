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
	"crypto/ecdsa"
	"fmt"
	"os"
	"time"

	"code.vegaprotocol.io/dustflow/api/rest/client"
	"code.vegaprotocol.io/dustflow/config"
	"code.vegaprotocol.io/dustflow/core/types"

	"github.com/jessevdk/go-flags"
)

type StatusCmd struct {
	config.HomeFlag

	NodeAddress string        `long:"node-address" default:"http://127.0.0.1:3008" description:"The address of the dustflow REST API"`
	Account     string        `long:"account" description:"Account to show the balances of, defaults to the node key"`
	Timeout     time.Duration `long:"timeout" default:"10s" description:"How long to wait for the node"`
}

var statusCmd StatusCmd

func (opts *StatusCmd) Execute(_ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	// the key is optional, without it only the public state is shown.
	var key *ecdsa.PrivateKey
	if k, err := loadKey(opts.Path()); err == nil {
		key = k
	}
	clt, err := client.New(opts.NodeAddress, key)
	if err != nil {
		return fmt.Errorf("invalid node address: %w", err)
	}

	account := clt.Address()
	if len(opts.Account) > 0 {
		if account, err = types.AddressFromString(opts.Account); err != nil {
			return err
		}
	}

	out := newPrinter(os.Stdout)

	gov, err := clt.Governance(ctx)
	if err != nil {
		return fmt.Errorf("could not reach the node: %w", err)
	}
	out.title("Governance")
	out.field("owner", gov.Owner.Hex())
	out.field("factory", gov.DustFlowFactory.Hex())
	out.field("quote asset", gov.QuoteAsset.Hex())

	markets, err := clt.Markets(ctx)
	if err != nil {
		return err
	}
	out.title(fmt.Sprintf("Markets (%d)", len(markets)))
	for _, m := range markets {
		summary, err := clt.MarketSummary(ctx, m.MarketID)
		if err != nil {
			return err
		}
		out.field(fmt.Sprintf("#%d", m.MarketID), fmt.Sprintf("%s bids=%d asks=%d expired=%v",
			m.MarketAddress.Hex(), len(summary.Bids), len(summary.Asks), summary.Expired))
	}

	vault, err := clt.VaultSummary(ctx)
	if err != nil {
		return err
	}
	out.title("Vault")
	out.field("state", vault.State)
	out.field("strategy", vault.Strategy)
	out.field("dust supply", vault.DustSupply)
	out.field("deposited", vault.Position.TotalDeposited)

	if types.IsZeroAddress(account) {
		return nil
	}
	list, err := clt.Assets(ctx)
	if err != nil {
		return err
	}
	out.title("Balances of " + account.Hex())
	for _, a := range list {
		bal, err := clt.Balance(ctx, a.Address, account)
		if err != nil {
			return err
		}
		out.field(a.Symbol, bal)
	}
	return nil
}

func Status(ctx context.Context, parser *flags.Parser) error {
	statusCmd = StatusCmd{}

	_, err := parser.AddCommand("status", "Show the state of a node", "Query a running dustflow node through its REST API", &statusCmd)
	return err
}
