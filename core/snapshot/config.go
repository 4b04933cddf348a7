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

package snapshot

import (
	"errors"
	"os"
	"path/filepath"

	"code.vegaprotocol.io/dustflow/libs/config/encoding"
	"code.vegaprotocol.io/dustflow/logging"
)

const (
	namedLogger = "snapshot"
	goLevelDB   = "GOLevelDB"
	memDB       = "memory"

	// SnapshotStateHome is the directory under the node home holding the database.
	SnapshotStateHome = "snapshots"
)

var ErrInvalidSnapshotStorageMethod = errors.New("invalid storage method, only GOLevelDB and memory are supported")

type Config struct {
	Level      encoding.LogLevel `choice:"debug" choice:"info" choice:"warning" choice:"error" choice:"panic" choice:"fatal" description:"Logging level (default: info)" long:"log-level"`
	KeepRecent int               `description:"Number of historic snapshots to keep on disk" long:"snapshot-keep-recent"`
	Storage    string            `choice:"GOLevelDB" choice:"memory" description:"Storage type to use" long:"storage"`
	DBPath     string            `description:"Path to database" long:"db-path"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:      encoding.LogLevel{Level: logging.InfoLevel},
		KeepRecent: 10,
		Storage:    goLevelDB,
	}
}

func NewTestConfig() Config {
	cfg := NewDefaultConfig()
	cfg.Storage = memDB
	return cfg
}

// Validate checks the values in the config file are sensible.
func (c *Config) Validate() error {
	if c.KeepRecent < 1 {
		return errors.New("the minimum number of snapshots to keep is 1")
	}
	if len(c.DBPath) != 0 && c.Storage == memDB {
		return errors.New("dbpath cannot be set when storage method is in-memory")
	}
	if c.Storage != memDB && c.Storage != goLevelDB {
		return ErrInvalidSnapshotStorageMethod
	}
	return nil
}

// dbPath returns the directory to create or load the snapshots from.
func (c *Config) dbPath(home string) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.Storage == memDB {
		return "", nil
	}
	if len(c.DBPath) == 0 {
		return filepath.Join(home, SnapshotStateHome), nil
	}

	stat, err := os.Stat(c.DBPath)
	if err != nil {
		return "", err
	}
	if !stat.IsDir() {
		return "", errors.New("snapshot DB path is not a directory")
	}
	return c.DBPath, nil
}
