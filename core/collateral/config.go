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
	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/logging"
)

const namedLogger = "collateral"

// Config represents the configuration of the collateral vault.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// ReserveRatio is the Dust minted per unit of principal, in basis points.
	ReserveRatio uint64 `long:"reserve-ratio" description:"dust minted per unit of principal in basis points, in (0, 10000]"`
	DustName     string `long:"dust-name"`
	DustSymbol   string `long:"dust-symbol"`
	DustDecimals uint32 `long:"dust-decimals"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:        encoding.LogLevel{Level: logging.InfoLevel},
		ReserveRatio: 5000,
		DustName:     "Dust",
		DustSymbol:   "DUST",
		DustDecimals: 6,
	}
}
