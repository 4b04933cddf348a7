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

package markets

import (
	"code.vegaprotocol.io/dustflow/core/matching"
	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/logging"
)

const namedLogger = "markets"

// Config represent the configuration of the market factory.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// RestrictCreation only lets the governance owner create markets.
	RestrictCreation encoding.Bool `long:"restrict-creation" description:"only the governance owner can create markets"`

	Matching matching.Config `group:"Matching" namespace:"matching"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:            encoding.LogLevel{Level: logging.InfoLevel},
		RestrictCreation: false,
		Matching:         matching.NewDefaultConfig(),
	}
}
