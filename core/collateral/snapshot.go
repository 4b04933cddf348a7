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

package collateral

import (
	"context"
	"encoding/json"
	"fmt"

	"code.vegaprotocol.io/dustflow/core/types"
)

type vaultState struct {
	Initialized bool                     `json:"initialized"`
	Asset       types.Address            `json:"asset"`
	Position    types.CollateralPosition `json:"position"`
	Dust        json.RawMessage          `json:"dust"`
}

func (v *Vault) Namespace() string {
	return fmt.Sprintf("vault.%s", v.address.Hex())
}

func (v *Vault) GetState() ([]byte, error) {
	dust, err := v.dust.GetState()
	if err != nil {
		return nil, err
	}
	return json.Marshal(vaultState{
		Initialized: v.initialized,
		Asset:       v.asset,
		Position:    v.position,
		Dust:        dust,
	})
}

// LoadState restores the position and the Dust ledger, the collateral
// token is resolved again from the asset address.
func (v *Vault) LoadState(ctx context.Context, data []byte) error {
	var st vaultState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Initialized {
		token, err := v.assets.Get(st.Asset)
		if err != nil {
			return err
		}
		v.token = token
	}
	v.initialized = st.Initialized
	v.asset = st.Asset
	v.position = types.NewCollateralPosition()
	if st.Position.TotalDeposited != nil {
		v.position = st.Position
	}
	if len(st.Dust) > 0 {
		return v.dust.LoadState(ctx, st.Dust)
	}
	return nil
}
