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
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type LevelDBDatabase struct {
	base

	filePath string
}

func (d *LevelDBDatabase) Clear() error {
	if err := d.DB.Close(); err != nil {
		return fmt.Errorf("could not close the connection: %w", err)
	}

	if err := os.RemoveAll(d.filePath); err != nil {
		return fmt.Errorf("could not remove the database file: %w", err)
	}

	adapter, err := initializeUnderlyingAdapter(d.filePath)
	if err != nil {
		return err
	}
	d.DB = adapter

	return nil
}

func NewLevelDBDatabase(filePath string) (*LevelDBDatabase, error) {
	adapter, err := initializeUnderlyingAdapter(filePath)
	if err != nil {
		return nil, err
	}

	return &LevelDBDatabase{
		filePath: filePath,
		base:     base{DB: adapter},
	}, nil
}

func initializeUnderlyingAdapter(filePath string) (*leveldb.DB, error) {
	adapter, err := leveldb.OpenFile(
		filePath,
		&opt.Options{
			Filter:          filter.NewBloomFilter(10),
			BlockCacher:     opt.NoCacher,
			OpenFilesCacher: opt.NoCacher,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize LevelDB adapter: %w", err)
	}

	return adapter, nil
}
