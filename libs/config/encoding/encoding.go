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

package encoding

import (
	"fmt"
	"time"

	"code.vegaprotocol.io/dustflow/logging"

	"github.com/ethereum/go-ethereum/common"
)

// Duration wraps a time.Duration so it can be written as "240h" in toml.
type Duration struct {
	time.Duration
}

func (d *Duration) Get() time.Duration {
	return d.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d *Duration) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel is wrapper over the actual log level
// so they can be specified as strings in the toml configuration.
type LogLevel struct {
	logging.Level
}

// Get return the store value.
func (l *LogLevel) Get() logging.Level {
	return l.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	var err error
	l.Level, err = logging.ParseLevel(string(text))
	return err
}

func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Address is an account address written as a 0x prefixed hex string,
// the empty string decodes to the zero address.
type Address struct {
	common.Address
}

func (a *Address) Get() common.Address {
	return a.Address
}

func (a *Address) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		a.Address = common.Address{}
		return nil
	}
	if !common.IsHexAddress(s) {
		return fmt.Errorf("invalid address %q", s)
	}
	a.Address = common.HexToAddress(s)
	return nil
}

func (a *Address) UnmarshalFlag(s string) error {
	return a.UnmarshalText([]byte(s))
}

func (a Address) MarshalText() ([]byte, error) {
	if a.Address == (common.Address{}) {
		return []byte{}, nil
	}
	return []byte(a.Hex()), nil
}

type Bool bool

func (b *Bool) UnmarshalFlag(s string) error {
	switch s {
	case "true":
		*b = true
	case "false":
		*b = false
	default:
		return fmt.Errorf("only `true' and `false' are valid values, not `%s'", s)
	}
	return nil
}
