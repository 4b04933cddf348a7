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

package rest

import (
	"time"

	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/logging"
)

const (
	namedLogger = "api.rest"

	// SignatureHeader carries the hex signature of the signing payload.
	SignatureHeader = "X-Dustflow-Signature"
	// AddressHeader carries the address the request claims to be signed by.
	AddressHeader = "X-Dustflow-Address"
	// NonceHeader carries a value unique to the request.
	NonceHeader = "X-Dustflow-Nonce"
	// ExpiryHeader carries the unix time in seconds after which the
	// request is refused.
	ExpiryHeader = "X-Dustflow-Expiry"

	DefaultChainID = "dustflow"
)

// Config represents the configuration of the REST API.
type Config struct {
	Level          encoding.LogLevel `long:"log-level"`
	Enabled        encoding.Bool     `long:"enabled" choice:"true" choice:"false" description:"start the REST API"`
	IP             string            `long:"ip" description:"interface the API listens on"`
	Port           int               `long:"port" description:"port the API listens on"`
	RequestTimeout encoding.Duration `long:"request-timeout" description:"how long a request waits for its transaction"`
	MaxBodySize    int64             `long:"max-body-size" description:"maximum size of a request body in bytes"`
	AllowedOrigins []string          `long:"allowed-origin" description:"CORS origins allowed, all when empty"`

	ChainID         string            `long:"chain-id" description:"identifier of the node signed into every request"`
	SignatureWindow encoding.Duration `long:"signature-window" description:"how far in the future a request expiry can be"`
	NonceCacheSize  int               `long:"nonce-cache-size" description:"number of unexpired nonces remembered"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:          encoding.LogLevel{Level: logging.InfoLevel},
		Enabled:        true,
		IP:             "0.0.0.0",
		Port:           3008,
		RequestTimeout: encoding.Duration{Duration: 10 * time.Second},
		MaxBodySize:    1 << 20,

		ChainID:         DefaultChainID,
		SignatureWindow: encoding.Duration{Duration: time.Minute},
		NonceCacheSize:  100000,
	}
}
