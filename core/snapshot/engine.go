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
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"code.vegaprotocol.io/dustflow/core/snapshot/databases"
	"code.vegaprotocol.io/dustflow/core/types"
	vgcrypto "code.vegaprotocol.io/dustflow/libs/crypto"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	ErrNoSnapshot        = errors.New("no snapshot available")
	ErrUnknownProvider   = errors.New("no provider registered for namespace")
	ErrSnapshotCorrupted = errors.New("snapshot hash does not match its payloads")

	latestKey    = []byte("latest")
	manifestPfx  = []byte("manifest/")
	payloadPfx   = []byte("payload/")
	providerRank = []struct {
		prefix string
		exact  bool
	}{
		{prefix: "governance", exact: true},
		{prefix: "token."},
		{prefix: "yield."},
		{prefix: "markets", exact: true}, // creates the markets, returns them as providers.
		{prefix: "market."},              // requires markets.
		{prefix: "vault."},
	}
)

// Manifest describes one stored snapshot.
type Manifest struct {
	Version    uint64    `json:"version"`
	Time       time.Time `json:"time"`
	Hash       string    `json:"hash"`
	Namespaces []string  `json:"namespaces"`
}

// Engine gathers the state of every provider into versioned snapshots
// and loads them back, providers are called in dependency order.
type Engine struct {
	Config
	log *logging.Logger
	db  databases.Database

	providers  map[string]types.StateProvider
	generators map[string]types.StateProviderGenerator
	latest     uint64
}

// New opens the snapshot database, home is the node home the default
// database path is derived from.
func New(log *logging.Logger, cfg Config, home string) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	path, err := cfg.dbPath(home)
	if err != nil {
		return nil, err
	}

	var db databases.Database
	if cfg.Storage == memDB {
		db = databases.NewInMemoryDatabase()
	} else {
		ldb, err := databases.NewLevelDBDatabase(path)
		if err != nil {
			return nil, err
		}
		db = ldb
	}

	e := &Engine{
		Config:     cfg,
		log:        log,
		db:         db,
		providers:  map[string]types.StateProvider{},
		generators: map[string]types.StateProviderGenerator{},
	}
	if err := e.loadLatest(); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

// ReloadConf updates the internal configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	// storage cannot change at runtime
	e.KeepRecent = cfg.KeepRecent
}

func (e *Engine) Close() error {
	return e.db.Close()
}

// ClearAndInitialise drops every stored snapshot.
func (e *Engine) ClearAndInitialise() error {
	if err := e.db.Clear(); err != nil {
		return err
	}
	e.latest = 0
	return nil
}

// AddProviders registers providers, a namespace can only be registered once.
func (e *Engine) AddProviders(provs ...types.StateProvider) {
	for _, p := range provs {
		ns := p.Namespace()
		if _, ok := e.providers[ns]; ok {
			e.log.Panic("provider already registered", logging.String("namespace", ns))
		}
		e.addProvider(p)
	}
}

func (e *Engine) addProvider(p types.StateProvider) {
	ns := p.Namespace()
	e.providers[ns] = p
	if g, ok := p.(types.StateProviderGenerator); ok {
		e.generators[ns] = g
	}
}

// refresh picks up the providers created by generators since the last call.
func (e *Engine) refresh() {
	for _, g := range e.generators {
		for _, p := range g.StateProviders() {
			e.addProvider(p)
		}
	}
}

// Latest returns the version of the last snapshot taken, 0 when none exists.
func (e *Engine) Latest() uint64 {
	return e.latest
}

// Snapshot stores the state of every provider as a new version.
func (e *Engine) Snapshot(_ context.Context) (*Manifest, error) {
	start := time.Now()
	defer func() { metrics.SnapshotTimeObserve(time.Since(start)) }()

	e.refresh()
	namespaces := e.namespaces()

	version := e.latest + 1
	batch := new(leveldb.Batch)
	payloads := make([][]byte, 0, len(namespaces))
	for _, ns := range namespaces {
		data, err := e.providers[ns].GetState()
		if err != nil {
			return nil, errors.Wrapf(err, "could not get state of %s", ns)
		}
		payloads = append(payloads, data)
		batch.Put(payloadKey(version, ns), data)
	}

	m := &Manifest{
		Version:    version,
		Time:       time.Now().UTC(),
		Hash:       hex.EncodeToString(hashPayloads(namespaces, payloads)),
		Namespaces: namespaces,
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	batch.Put(manifestKey(version), raw)
	batch.Put(latestKey, versionBytes(version))
	e.prune(batch, version)

	if err := e.db.Write(batch); err != nil {
		return nil, err
	}
	e.latest = version

	e.log.Info("snapshot taken",
		logging.Uint64("version", version),
		logging.String("hash", m.Hash),
		logging.Int("providers", len(namespaces)),
	)
	return m, nil
}

// Restore loads the latest snapshot into the providers.
func (e *Engine) Restore(ctx context.Context) (*Manifest, error) {
	if e.latest == 0 {
		return nil, ErrNoSnapshot
	}
	return e.RestoreVersion(ctx, e.latest)
}

// RestoreVersion loads the given snapshot version into the providers.
func (e *Engine) RestoreVersion(ctx context.Context, version uint64) (*Manifest, error) {
	m, err := e.manifest(version)
	if err != nil {
		return nil, err
	}

	payloads := make([][]byte, 0, len(m.Namespaces))
	for _, ns := range m.Namespaces {
		data, err := e.db.Get(payloadKey(version, ns))
		if err != nil {
			return nil, errors.Wrapf(err, "could not read payload of %s", ns)
		}
		payloads = append(payloads, data)
	}
	if hex.EncodeToString(hashPayloads(m.Namespaces, payloads)) != m.Hash {
		return nil, ErrSnapshotCorrupted
	}

	for i, ns := range m.Namespaces {
		p, ok := e.providers[ns]
		if !ok {
			return nil, errors.Wrap(ErrUnknownProvider, ns)
		}
		if err := p.LoadState(ctx, payloads[i]); err != nil {
			return nil, errors.Wrapf(err, "could not load state of %s", ns)
		}
		if g, ok := p.(types.StateProviderGenerator); ok {
			// the generator recreated its children, they replace the ones known so far.
			for _, child := range g.StateProviders() {
				e.addProvider(child)
			}
		}
	}

	e.log.Info("snapshot restored",
		logging.Uint64("version", version),
		logging.String("hash", m.Hash),
	)
	return m, nil
}

// List returns the manifests of the stored snapshots, oldest first.
func (e *Engine) List() ([]Manifest, error) {
	it := e.db.Iterate(manifestPfx)
	defer it.Release()

	out := []Manifest{}
	for it.Next() {
		var m Manifest
		if err := json.Unmarshal(it.Value(), &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, it.Error()
}

func (e *Engine) manifest(version uint64) (*Manifest, error) {
	raw, err := e.db.Get(manifestKey(version))
	if err != nil {
		if databases.IsNotFound(err) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	m := &Manifest{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (e *Engine) loadLatest() error {
	raw, err := e.db.Get(latestKey)
	if err != nil {
		if databases.IsNotFound(err) {
			return nil
		}
		return err
	}
	if len(raw) != 8 {
		return fmt.Errorf("invalid latest snapshot version %x", raw)
	}
	e.latest = binary.BigEndian.Uint64(raw)
	return nil
}

// prune removes the versions falling out of the retention window.
func (e *Engine) prune(batch *leveldb.Batch, version uint64) {
	keep := uint64(e.KeepRecent)
	if version <= keep {
		return
	}
	oldest := version - keep + 1
	stored, err := e.List()
	if err != nil {
		e.log.Error("could not list snapshots to prune", logging.Error(err))
		return
	}
	for _, m := range stored {
		if m.Version >= oldest {
			continue
		}
		for _, ns := range m.Namespaces {
			batch.Delete(payloadKey(m.Version, ns))
		}
		batch.Delete(manifestKey(m.Version))
	}
}

// namespaces returns the registered namespaces in call order.
func (e *Engine) namespaces() []string {
	out := make([]string, 0, len(e.providers))
	for ns := range e.providers {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func rank(ns string) int {
	for i, r := range providerRank {
		if r.exact && ns == r.prefix {
			return i
		}
		if !r.exact && strings.HasPrefix(ns, r.prefix) {
			return i
		}
	}
	return len(providerRank)
}

func hashPayloads(namespaces []string, payloads [][]byte) []byte {
	buf := []byte{}
	for i, ns := range namespaces {
		buf = append(buf, ns...)
		buf = append(buf, payloads[i]...)
	}
	return vgcrypto.Hash(buf)
}

func versionBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func manifestKey(v uint64) []byte {
	return append(append([]byte{}, manifestPfx...), versionBytes(v)...)
}

func payloadKey(v uint64, ns string) []byte {
	k := append(append([]byte{}, payloadPfx...), versionBytes(v)...)
	k = append(k, '/')
	return append(k, ns...)
}
