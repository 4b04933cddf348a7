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

import "time"

// MarketConfig holds the parameters governance sets for a market id.
// A zero CollateralAsset means the slot was never configured.
type MarketConfig struct {
	MarketID           uint64        `json:"marketId"`
	SettlementDuration time.Duration `json:"settlementDuration"`
	CollateralAsset    Address       `json:"collateralAsset"`
}

func (c MarketConfig) IsConfigured() bool {
	return !IsZeroAddress(c.CollateralAsset)
}

// MarketRecord is the factory directory entry of a deployed market.
type MarketRecord struct {
	MarketID      uint64       `json:"marketId"`
	MarketAddress Address      `json:"marketAddress"`
	Config        MarketConfig `json:"config"`
	QuoteAsset    Address      `json:"quoteAsset"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// ExpiresAt is the end of the market settlement window.
func (r MarketRecord) ExpiresAt() time.Time {
	return r.CreatedAt.Add(r.Config.SettlementDuration)
}
