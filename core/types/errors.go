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

import "github.com/pkg/errors"

var (
	ErrUnauthorized           = errors.New("caller is not authorised")
	ErrMarketNotFound         = errors.New("market not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrInvalidSide            = errors.New("invalid side")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrInsufficientAllowance  = errors.New("insufficient allowance")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrTransferFailed         = errors.New("token transfer failed")
	ErrAlreadyInitialized     = errors.New("vault already initialized")
	ErrNotInitialized         = errors.New("vault not initialized")
	ErrNothingMatched         = errors.New("no order matched")
	ErrMarketNotConfigured    = errors.New("market is not configured")
	ErrFactoryInactive        = errors.New("factory is not the active factory")
	ErrMarketExpired          = errors.New("market settlement window is over")
	ErrOrderNotCancellable    = errors.New("order cannot be cancelled")
	ErrReentrantCall          = errors.New("reentrant call")
	ErrReconciliationMismatch = errors.New("strategy holds less than the deployed principal")
	ErrInvalidRatio           = errors.New("reserve ratio must be in (0, 10000]")
)
