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

package databases

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Database is the key value store snapshots are written to.
type Database interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Write(batch *leveldb.Batch) error
	Iterate(prefix []byte) iterator.Iterator
	Clear() error
	Close() error
}

// IsNotFound reports whether err is the not found error of the store.
func IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

type base struct {
	*leveldb.DB
}

func (b *base) Get(key []byte) ([]byte, error) {
	return b.DB.Get(key, nil)
}

func (b *base) Has(key []byte) (bool, error) {
	return b.DB.Has(key, nil)
}

func (b *base) Write(batch *leveldb.Batch) error {
	if err := b.DB.Write(batch, nil); err != nil {
		return fmt.Errorf("could not write batch: %w", err)
	}
	return nil
}

func (b *base) Iterate(prefix []byte) iterator.Iterator {
	return b.DB.NewIterator(util.BytesPrefix(prefix), nil)
}
