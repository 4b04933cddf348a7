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

import "code.vegaprotocol.io/dustflow/libs/num"

// CollateralPosition is the aggregate accounting of a vault.
type CollateralPosition struct {
	TotalDeposited            *num.Uint `json:"totalDeposited"`
	TotalMinted               *num.Uint `json:"totalMinted"`
	ExternalPrincipalDeployed *num.Uint `json:"externalPrincipalDeployed"`
}

func NewCollateralPosition() CollateralPosition {
	return CollateralPosition{
		TotalDeposited:            num.UintZero(),
		TotalMinted:               num.UintZero(),
		ExternalPrincipalDeployed: num.UintZero(),
	}
}

func (p CollateralPosition) Clone() CollateralPosition {
	return CollateralPosition{
		TotalDeposited:            p.TotalDeposited.Clone(),
		TotalMinted:               p.TotalMinted.Clone(),
		ExternalPrincipalDeployed: p.ExternalPrincipalDeployed.Clone(),
	}
}
