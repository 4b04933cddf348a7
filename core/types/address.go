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

package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account, a token or a deployed component.
type Address = common.Address

// ZeroAddress is the unset address.
var ZeroAddress = Address{}

func IsZeroAddress(a Address) bool {
	return a == ZeroAddress
}

// AddressFromString parses a 0x prefixed or bare hex address.
func AddressFromString(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return ZeroAddress, ErrInvalidAddress
	}
	return common.HexToAddress(s), nil
}

// MustAddress is AddressFromString for constants and tests.
func MustAddress(s string) Address {
	a, err := AddressFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}
