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

package events

import (
	"context"

	"code.vegaprotocol.io/dustflow/core/types"
)

type MarketConfigUpdated struct {
	*Base
	c types.MarketConfig
}

func NewMarketConfigUpdated(ctx context.Context, c types.MarketConfig) *MarketConfigUpdated {
	return &MarketConfigUpdated{
		Base: newBase(ctx, MarketConfigUpdatedEvent),
		c:    c,
	}
}

func (m MarketConfigUpdated) MarketConfig() types.MarketConfig {
	return m.c
}

// GovernanceUpdated is sent when one of the market independent
// governance pointers changes.
type GovernanceUpdated struct {
	*Base
	field string
	value types.Address
}

func NewGovernanceUpdated(ctx context.Context, field string, value types.Address) *GovernanceUpdated {
	return &GovernanceUpdated{
		Base:  newBase(ctx, GovernanceUpdatedEvent),
		field: field,
		value: value,
	}
}

func (g GovernanceUpdated) Field() string {
	return g.field
}

func (g GovernanceUpdated) Value() types.Address {
	return g.value
}
