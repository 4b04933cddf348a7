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

package matching

import (
	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"
)

const namedLogger = "matching"

// Config represents the configuration of the matching engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// PriceDecimals is the fixed point precision of prices, a Buy escrows
	// amount * price / 10^PriceDecimals of the quote asset.
	PriceDecimals       uint32        `long:"price-decimals" description:"fixed point decimals of order prices"`
	LogPriceLevelsDebug encoding.Bool `long:"log-price-levels-debug"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:               encoding.LogLevel{Level: logging.InfoLevel},
		PriceDecimals:       6,
		LogPriceLevelsDebug: false,
	}
}

// PriceScale returns 10^PriceDecimals.
func (c Config) PriceScale() *num.Uint {
	scale := num.NewUint(1)
	ten := num.NewUint(10)
	for i := uint32(0); i < c.PriceDecimals; i++ {
		scale.Mul(scale, ten)
	}
	return scale
}
