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

package processor

import (
	"encoding/json"
	"fmt"
	"time"

	"code.vegaprotocol.io/dustflow/core/types"
)

type Status uint8

const (
	StatusPending Status = iota
	StatusCommitted
	StatusReverted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCommitted:
		return "committed"
	case StatusReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "pending":
		*s = StatusPending
	case "committed":
		*s = StatusCommitted
	case "reverted":
		*s = StatusReverted
	default:
		return fmt.Errorf("unknown receipt status %q", raw)
	}
	return nil
}

// Receipt is the outcome of a submitted transaction.
type Receipt struct {
	TxID        string        `json:"txId"`
	Kind        string        `json:"kind"`
	Caller      types.Address `json:"caller"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Result      interface{}   `json:"result,omitempty"`
	Events      int           `json:"events"`
	SubmittedAt time.Time     `json:"submittedAt"`
	ExecutedAt  time.Time     `json:"executedAt,omitempty"`

	err error
}

// Err returns the error the transaction failed with, nil when committed.
func (r *Receipt) Err() error {
	return r.err
}

func (r Receipt) clone() *Receipt {
	return &r
}
