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

import "context"

// TxResult is emitted by the processor once a transaction is final,
// it is the only event kept for a reverted transaction.
type TxResult struct {
	*Base
	kind string
	err  string
}

func NewTxResult(ctx context.Context, kind string, err error) *TxResult {
	r := &TxResult{
		Base: newBase(ctx, TxResultEvent),
		kind: kind,
	}
	if err != nil {
		r.err = err.Error()
	}
	return r
}

func (t TxResult) Kind() string {
	return t.kind
}

func (t TxResult) Error() string {
	return t.err
}

func (t TxResult) Success() bool {
	return t.err == ""
}

// ID is unique per transaction and sequence.
func (t TxResult) ID() string {
	return t.eventID()
}
