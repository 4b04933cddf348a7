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

package rest

import (
	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
)

type SetMarketConfigRequest struct {
	MarketID uint64 `json:"marketId"`
	// SettlementSeconds is the length of the settlement window, 0 never expires.
	SettlementSeconds uint64        `json:"settlementSeconds"`
	CollateralAsset   types.Address `json:"collateralAsset"`
}

type DurationRequest struct {
	SettlementSeconds uint64 `json:"settlementSeconds"`
}

type AddressRequest struct {
	Address types.Address `json:"address"`
}

type TradeRequest struct {
	Side   types.Side `json:"side"`
	Amount *num.Uint  `json:"amount"`
	Price  *num.Uint  `json:"price"`
}

type MatchRequest struct {
	Side     types.Side `json:"side"`
	Amount   *num.Uint  `json:"amount"`
	Price    *num.Uint  `json:"price"`
	OrderIDs []uint64   `json:"orderIds"`
}

type AmountRequest struct {
	Amount *num.Uint `json:"amount"`
}

type ApproveRequest struct {
	Spender types.Address `json:"spender"`
	Amount  *num.Uint     `json:"amount"`
}

type TransferRequest struct {
	To     types.Address `json:"to"`
	Amount *num.Uint     `json:"amount"`
}

type GovernanceResponse struct {
	Owner           types.Address `json:"owner"`
	DustFlowFactory types.Address `json:"dustFlowFactory"`
	QuoteAsset      types.Address `json:"quoteAsset"`
}

type AssetResponse struct {
	Address     types.Address `json:"address"`
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint32        `json:"decimals"`
	TotalSupply *num.Uint     `json:"totalSupply"`
}

type BalanceResponse struct {
	Asset   types.Address `json:"asset"`
	Account types.Address `json:"account"`
	Balance *num.Uint     `json:"balance"`
}

type TxResponse struct {
	Receipt *processor.Receipt `json:"receipt"`
}

type HTTPError struct {
	ErrorStr string             `json:"error"`
	Receipt  *processor.Receipt `json:"receipt,omitempty"`
}

func (e HTTPError) Error() string {
	return e.ErrorStr
}

func newError(e string) HTTPError {
	return HTTPError{
		ErrorStr: e,
	}
}
