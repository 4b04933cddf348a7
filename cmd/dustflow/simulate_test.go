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
	"bytes"
	"context"
	"testing"

	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestSimulation(buf *bytes.Buffer) *simulation {
	color.NoColor = true
	return &simulation{
		amount: num.NewUint(100000000),
		price:  num.NewUint(200000),
		mint:   num.NewUint(1000000),
		out:    &printer{w: buf},
	}
}

func TestSimulation(t *testing.T) {
	t.Run("The deployment scripts replay without reverts", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s := getTestSimulation(buf)
		require.NoError(t, s.run(context.Background(), logging.NewTestLogger()))

		out := buf.String()
		assert.NotContains(t, out, "REVERTED")
		assert.Contains(t, out, "match trade: OK")
		assert.Contains(t, out, "dust supply: 500000")
		assert.Contains(t, out, "asks: 0")
		assert.Contains(t, out, "vault: initialized")
	})
	t.Run("An order the trader cannot pay for stops the replay", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s := getTestSimulation(buf)
		s.amount = num.MustUintFromString("1000000000000000000000000000")
		require.Error(t, s.run(context.Background(), logging.NewTestLogger()))
		assert.Contains(t, buf.String(), "REVERTED")
	})
	t.Run("Amounts must be integers", func(t *testing.T) {
		assert.Nil(t, parseAmount("1.5"))
		assert.Equal(t, "42", parseAmount("42").String())
	})
}
