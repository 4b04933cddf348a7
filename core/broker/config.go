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

package broker

import (
	"time"

	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/logging"
)

const namedLogger = "broker"

type Config struct {
	Level       encoding.LogLevel `long:"log-level"`
	SendTimeout encoding.Duration `long:"send-timeout" description:"how long a slow subscriber may block a batch"`
	LogEvents   encoding.Bool     `long:"log-events" description:"log every event sent at debug level"`
	// RecentEvents is the number of events the node keeps for the API.
	RecentEvents int `long:"recent-events" description:"number of recent events kept in memory"`
	StreamBuffer int `long:"stream-buffer" description:"batches buffered per event stream"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:       encoding.LogLevel{Level: logging.InfoLevel},
		SendTimeout: encoding.Duration{Duration: time.Second},
		LogEvents:   false,

		RecentEvents: 1000,
		StreamBuffer: 64,
	}
}
