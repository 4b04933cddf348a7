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

package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Binary constructs a field that carries an opaque binary blob.
func Binary(key string, val []byte) zap.Field {
	return zap.Binary(key, val)
}

// Bool constructs a field that carries a bool.
func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

// Duration constructs a field with the given key and value.
func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// Error constructs a field that lazily stores err.Error() under the key "error".
func Error(val error) zap.Field {
	return zap.Error(val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value.
func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

// String constructs a field with the given key and value.
func String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and value.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Uint64 constructs a field with the given key and value.
func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

// Uint64s constructs a field with the given key and value.
func Uint64s(key string, val []uint64) zap.Field {
	return zap.Uint64s(key, val)
}

// Time constructs a field with the given key and value.
func Time(key string, val time.Time) zap.Field {
	return zap.Time(key, val)
}

// BigUint constructs a field with the given key and any value implementing fmt.Stringer,
// used for num.Uint amounts.
func BigUint(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

// Address constructs a field for an account, token or market address.
func Address(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

// MarketID constructs a field with the market sequence id.
func MarketID(id uint64) zap.Field {
	return zap.Uint64("market-id", id)
}

// OrderID constructs a field with the order sequence id.
func OrderID(id uint64) zap.Field {
	return zap.Uint64("order-id", id)
}

// TxID constructs a field with a transaction id.
func TxID(id string) zap.Field {
	return zap.String("tx-id", id)
}
