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

package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrInvalidSignatureSize = errors.New("signature must be 65 bytes")
)

// EthereumChecksumAddress is a simple utility function
// to ensure all ethereum addresses used in dustflow are checksumed
// this expects a hex encoded string.
func EthereumChecksumAddress(s string) string {
	// as per docs the Hex method return EIP-55 compliant hex strings
	return common.HexToAddress(s).Hex()
}

// EthereumIsValidAddress returns whether the given string is a valid ethereum address.
func EthereumIsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// Hash returns the keccak256 digest of the payload.
func Hash(payload []byte) []byte {
	return crypto.Keccak256(payload)
}

// Sign signs the keccak256 digest of payload and returns the
// hex encoded [R || S || V] signature.
func Sign(key *ecdsa.PrivateKey, payload []byte) (string, error) {
	sig, err := crypto.Sign(Hash(payload), key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// RecoverSigner returns the address of the key which produced sig over payload.
func RecoverSigner(payload []byte, sig string) (common.Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(sig, "0x"))
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	if len(raw) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignatureSize
	}
	pub, err := crypto.SigToPub(Hash(payload), raw)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// GenerateKey creates a new secp256k1 key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// KeyFromHex loads a hex encoded secp256k1 private key.
func KeyFromHex(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
}

// KeyToHex encodes the private key the way KeyFromHex reads it.
func KeyToHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(key))
}

// KeyAddress returns the account address of the key.
func KeyAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
