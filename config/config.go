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

//lint:file-ignore SA5008 duplicated struct tags are ok for config

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"code.vegaprotocol.io/dustflow/api/rest"
	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/broker"
	"code.vegaprotocol.io/dustflow/core/collateral"
	"code.vegaprotocol.io/dustflow/core/governance"
	"code.vegaprotocol.io/dustflow/core/helper"
	"code.vegaprotocol.io/dustflow/core/markets"
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/snapshot"
	"code.vegaprotocol.io/dustflow/core/yield"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

const (
	configFileName = "config.toml"
	// KeyFileName is the file holding the hex encoded node key.
	KeyFileName = "node.key"
	appName     = "dustflow"
)

var ErrConfigExists = errors.New("configuration already exists")

// Empty is used when a command or sub-command receives no argument.
type Empty struct{}

// HomeFlag selects the directory holding the configuration and the state.
type HomeFlag struct {
	Home string `long:"home" description:"Path to the dustflow home directory"`
}

// Config ties together all other application configuration types.
type Config struct {
	Logging    logging.Config    `group:"Logging" namespace:"logging"`
	Broker     broker.Config     `group:"Broker" namespace:"broker"`
	Assets     assets.Config     `group:"Assets" namespace:"assets"`
	Governance governance.Config `group:"Governance" namespace:"governance"`
	Markets    markets.Config    `group:"Markets" namespace:"markets"`
	Collateral collateral.Config `group:"Collateral" namespace:"collateral"`
	Yield      yield.Config      `group:"Yield" namespace:"yield"`
	Helper     helper.Config     `group:"Helper" namespace:"helper"`
	Processor  processor.Config  `group:"Processor" namespace:"processor"`
	Snapshot   snapshot.Config   `group:"Snapshot" namespace:"snapshot"`
	Metrics    metrics.Config    `group:"Metrics" namespace:"metrics"`
	API        rest.Config       `group:"API" namespace:"api"`

	Genesis Genesis `group:"Genesis" namespace:"genesis"`
}

// NewDefaultConfig returns a set of default configs for all packages, as specified at the per package
// config level.
func NewDefaultConfig() Config {
	return Config{
		Logging:    logging.NewDefaultConfig(),
		Broker:     broker.NewDefaultConfig(),
		Assets:     assets.NewDefaultConfig(),
		Governance: governance.NewDefaultConfig(),
		Markets:    markets.NewDefaultConfig(),
		Collateral: collateral.NewDefaultConfig(),
		Yield:      yield.NewDefaultConfig(),
		Helper:     helper.NewDefaultConfig(),
		Processor:  processor.NewDefaultConfig(),
		Snapshot:   snapshot.NewDefaultConfig(),
		Metrics:    metrics.NewDefaultConfig(),
		API:        rest.NewDefaultConfig(),
		Genesis:    NewDefaultGenesis(),
	}
}

// Validate checks the settings which cannot be checked field by field.
func (c Config) Validate() error {
	if err := c.Snapshot.Validate(); err != nil {
		return err
	}
	if c.Processor.QueueSize <= 0 || c.Processor.ReceiptCacheSize <= 0 {
		return errors.New("processor queue and receipt cache sizes must be positive")
	}
	if c.Broker.RecentEvents <= 0 || c.Broker.StreamBuffer <= 0 {
		return errors.New("broker recent events and stream buffer sizes must be positive")
	}
	return c.Genesis.Validate()
}

// DefaultHome is the home directory used when none is given.
func DefaultHome() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// Path returns the home directory selected by the flag.
func (h HomeFlag) Path() string {
	if len(h.Home) == 0 {
		return DefaultHome()
	}
	return h.Home
}

// FilePath returns the path of the configuration file in home.
func FilePath(home string) string {
	return filepath.Join(home, configFileName)
}

// Exists tells if a configuration file is present in home.
func Exists(home string) (bool, error) {
	_, err := os.Stat(FilePath(home))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Read loads the configuration file of home over the default values.
func Read(home string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := decodeFile(FilePath(home), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write saves cfg in home, an existing file is only replaced when overwrite is set.
func Write(home string, cfg Config, overwrite bool) error {
	exists, err := Exists(home)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return errors.Wrap(ErrConfigExists, FilePath(home))
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return fmt.Errorf("couldn't create home directory: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(FilePath(home), buf.Bytes(), 0o600)
}

func decodeFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(buf), cfg); err != nil {
		return errors.Wrapf(err, "invalid configuration file %s", path)
	}
	return nil
}
