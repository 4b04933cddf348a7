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

package crypto_test

import (
	"testing"

	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatures(t *testing.T) {
	t.Run("Recovering a signature returns the signer address", testRecoverSigner)
	t.Run("Recovering over a tampered payload returns another address", testRecoverTampered)
	t.Run("Malformed signatures are rejected", testMalformedSignature)
}

func testRecoverSigner(t *testing.T) {
	key, err := vgcrypto.GenerateKey()
	require.NoError(t, err)

	payload := []byte(`{"side":"sell","amount":"100000000","price":"200000"}`)
	sig, err := vgcrypto.Sign(key, payload)
	require.NoError(t, err)

	addr, err := vgcrypto.RecoverSigner(payload, "0x"+sig)
	require.NoError(t, err)
	assert.Equal(t, vgcrypto.KeyAddress(key), addr)
}

func testRecoverTampered(t *testing.T) {
	key, err := vgcrypto.GenerateKey()
	require.NoError(t, err)

	sig, err := vgcrypto.Sign(key, []byte("amount=1"))
	require.NoError(t, err)

	addr, err := vgcrypto.RecoverSigner([]byte("amount=2"), sig)
	if err == nil {
		assert.NotEqual(t, vgcrypto.KeyAddress(key), addr)
	}
}

func testMalformedSignature(t *testing.T) {
	_, err := vgcrypto.RecoverSigner([]byte("x"), "zz")
	assert.ErrorIs(t, err, vgcrypto.ErrInvalidSignature)

	_, err = vgcrypto.RecoverSigner([]byte("x"), "abcd")
	assert.ErrorIs(t, err, vgcrypto.ErrInvalidSignatureSize)
}

func TestEthereumAddresses(t *testing.T) {
	assert.True(t, vgcrypto.EthereumIsValidAddress("0x101848d5c5bbca18e6b4431eedf6b95e9adf82fa"))
	assert.False(t, vgcrypto.EthereumIsValidAddress("0x1018"))
	assert.Len(t, vgcrypto.EthereumChecksumAddress("101848d5c5bbca18e6b4431eedf6b95e9adf82fa"), 42)
}

func TestKeyEncoding(t *testing.T) {
	key, err := vgcrypto.GenerateKey()
	require.NoError(t, err)

	encoded := vgcrypto.KeyToHex(key)
	assert.Len(t, encoded, 64)

	decoded, err := vgcrypto.KeyFromHex("0x" + encoded)
	require.NoError(t, err)
	assert.Equal(t, vgcrypto.KeyAddress(key), vgcrypto.KeyAddress(decoded))
}
