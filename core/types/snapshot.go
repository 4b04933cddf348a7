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

import "context"

// StateProvider is a component whose state is persisted by the snapshot engine.
type StateProvider interface {
	Namespace() string
	GetState() ([]byte, error)
	LoadState(ctx context.Context, data []byte) error
}

// StateProviderGenerator is a provider which creates further providers when
// its state is loaded, the markets of the factory for instance.
type StateProviderGenerator interface {
	StateProvider
	StateProviders() []StateProvider
}
