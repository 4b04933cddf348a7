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

package encoding_test

import (
	"strings"
	"testing"
	"time"

	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Level    encoding.LogLevel
	Window   encoding.Duration
	Asset    encoding.Address
	Optional encoding.Address
}

func TestTomlRoundTrip(t *testing.T) {
	in := `
Level = "Debug"
Window = "240h0m0s"
Asset = "0x101848d5c5bbca18e6b4431eedf6b95e9adf82fa"
Optional = ""
`
	var s sample
	_, err := toml.Decode(in, &s)
	require.NoError(t, err)
	assert.Equal(t, logging.DebugLevel, s.Level.Get())
	assert.Equal(t, 240*time.Hour, s.Window.Get())
	assert.Equal(t, "0x101848d5c5bbca18e6b4431eedf6b95e9adf82fa", strings.ToLower(s.Asset.Hex()))
	assert.Equal(t, [20]byte{}, [20]byte(s.Optional.Get()))
}

func TestAddressRejectsGarbage(t *testing.T) {
	var a encoding.Address
	assert.Error(t, a.UnmarshalFlag("0x1234"))
	assert.NoError(t, a.UnmarshalFlag(""))
}

func TestBoolFlag(t *testing.T) {
	var b encoding.Bool
	require.NoError(t, b.UnmarshalFlag("true"))
	assert.True(t, bool(b))
	assert.Error(t, b.UnmarshalFlag("yes"))
}
