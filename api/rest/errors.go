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
	"context"
	"errors"
	"net/http"

	"code.vegaprotocol.io/dustflow/core/processor"
	"code.vegaprotocol.io/dustflow/core/types"
)

var (
	ErrInvalidRequest   = newError("invalid request")
	ErrMissingSignature = newError("missing request signature")
	ErrInvalidSignature = newError("invalid request signature")
	ErrMissingNonce     = newError("missing request nonce or expiry")
	ErrRequestExpired   = newError("request expired or expiry too far")
	ErrNonceReplayed    = newError("request nonce already used")
	ErrTooManyRequests  = newError("too many unexpired requests")
	ErrBodyTooLarge     = newError("request body too large")
	ErrNotFound         = newError("not found")
)

// statusFor maps an engine error to the HTTP status returned to the caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, types.ErrMarketNotFound),
		errors.Is(err, types.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidAmount),
		errors.Is(err, types.ErrInvalidPrice),
		errors.Is(err, types.ErrInvalidSide),
		errors.Is(err, types.ErrInvalidAddress),
		errors.Is(err, types.ErrInvalidRatio):
		return http.StatusBadRequest
	case errors.Is(err, processor.ErrProcessorStopped),
		errors.Is(err, processor.ErrProcessorNotStarted):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusAccepted
	case errors.Is(err, processor.ErrTxPanicked):
		return http.StatusInternalServerError
	default:
		// the transaction was valid but the state did not allow it
		return http.StatusConflict
	}
}
