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
	"path/filepath"
	"strings"

	"code.vegaprotocol.io/dustflow/config"
	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	config.HomeFlag

	Force      bool   `short:"f" long:"force" description:"Erase existing dustflow configuration at the specified path"`
	Allocation string `long:"allocation" default:"1000000000000" description:"Amount of every genesis asset allocated to the owner, in base units"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	home := opts.Path()
	configExists, err := config.Exists(home)
	if err != nil {
		return fmt.Errorf("couldn't verify configuration presence: %w", err)
	}
	if configExists && !opts.Force {
		return fmt.Errorf("configuration already exists at `%s` please remove it first or re-run using -f", config.FilePath(home))
	}

	key, err := vgcrypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("couldn't generate the owner key: %w", err)
	}
	owner := vgcrypto.KeyAddress(key)

	cfg := config.NewDefaultConfig()
	cfg.Genesis.Owner = encoding.Address{Address: owner}
	for i := range cfg.Genesis.Assets {
		cfg.Genesis.Assets[i].Allocations = map[string]string{
			owner.Hex(): opts.Allocation,
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	if err := config.Write(home, cfg, opts.Force); err != nil {
		return fmt.Errorf("couldn't save configuration file: %w", err)
	}
	keyPath := filepath.Join(home, config.KeyFileName)
	if err := os.WriteFile(keyPath, []byte(vgcrypto.KeyToHex(key)), 0o600); err != nil {
		return fmt.Errorf("couldn't save the owner key: %w", err)
	}

	logger.Info("configuration generated successfully",
		logging.String("path", config.FilePath(home)),
		logging.String("key", keyPath),
		logging.Address("owner", owner),
	)
	return nil
}

func Init(ctx context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initializes a dustflow node"
	long := "Generate the configuration, the genesis and the owner key required for a dustflow node to start"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}

// loadKey reads the key written by init.
func loadKey(home string) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(filepath.Join(home, config.KeyFileName))
	if err != nil {
		return nil, fmt.Errorf("couldn't read the node key: %w", err)
	}
	return vgcrypto.KeyFromHex(strings.TrimSpace(string(raw)))
}
