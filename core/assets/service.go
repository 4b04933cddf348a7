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

package assets

import (
	"errors"
	"sort"
	"sync"

	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/logging"
)

var (
	ErrAssetDoesNotExist = errors.New("asset does not exist")
	ErrAssetExists       = errors.New("asset already registered")
)

// Service is the directory of tokens known to the node.
type Service struct {
	log *logging.Logger
	cfg Config

	mu     sync.RWMutex
	tokens map[types.Address]Token
}

func New(log *logging.Logger, cfg Config) *Service {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Service{
		log:    log,
		cfg:    cfg,
		tokens: map[types.Address]Token{},
	}
}

func (s *Service) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}

	s.cfg = cfg
}

func (s *Service) Register(addr types.Address, t Token) error {
	if types.IsZeroAddress(addr) {
		return types.ErrInvalidAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[addr]; ok {
		return ErrAssetExists
	}
	s.tokens[addr] = t
	s.log.Debug("token registered", logging.Address("address", addr))
	return nil
}

func (s *Service) Get(addr types.Address) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[addr]
	if !ok {
		return nil, ErrAssetDoesNotExist
	}
	return t, nil
}

func (s *Service) Exists(addr types.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[addr]
	return ok
}

// List returns the registered addresses, sorted.
func (s *Service) List() []types.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Address, 0, len(s.tokens))
	for a := range s.tokens {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}
