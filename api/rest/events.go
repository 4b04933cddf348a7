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
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	"github.com/julienschmidt/httprouter"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

type EventResponse struct {
	Type     string      `json:"type"`
	Sequence uint64      `json:"sequence"`
	TxID     string      `json:"txId,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

type GovernanceUpdate struct {
	Field string        `json:"field"`
	Value types.Address `json:"value"`
}

type VaultMovement struct {
	Party     types.Address            `json:"party"`
	Principal *num.Uint                `json:"principal"`
	Dust      *num.Uint                `json:"dust"`
	Position  types.CollateralPosition `json:"position"`
}

type TokenTransfer struct {
	Token  types.Address `json:"token"`
	From   types.Address `json:"from"`
	To     types.Address `json:"to"`
	Amount *num.Uint     `json:"amount"`
}

type TxOutcome struct {
	Kind    string `json:"kind"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func newEventResponse(e events.Event) EventResponse {
	resp := EventResponse{
		Type:     e.Type().String(),
		Sequence: e.Sequence(),
		TxID:     e.TxID(),
	}
	switch ev := e.(type) {
	case *events.MarketConfigUpdated:
		resp.Data = ev.MarketConfig()
	case *events.GovernanceUpdated:
		resp.Data = GovernanceUpdate{Field: ev.Field(), Value: ev.Value()}
	case *events.MarketCreated:
		resp.Data = ev.Record()
	case *events.Order:
		resp.Data = ev.Order()
	case *events.Trade:
		resp.Data = ev.Trade()
	case *events.VaultInitialized:
		resp.Data = AddressRequest{Address: ev.Asset()}
	case *events.VaultMovement:
		resp.Data = VaultMovement{
			Party:     ev.Party(),
			Principal: ev.Principal(),
			Dust:      ev.Dust(),
			Position:  ev.Position(),
		}
	case *events.Transfer:
		resp.Data = TokenTransfer{Token: ev.Token(), From: ev.From(), To: ev.To(), Amount: ev.Amount()}
	case *events.TxResult:
		resp.Data = TxOutcome{Kind: ev.Kind(), Success: ev.Success(), Error: ev.Error()}
	}
	return resp
}

// eventQuery reads the repeated type values and the optional market and
// party values of q.
func eventQuery(q url.Values) ([]events.Type, func(events.Event) bool, error) {
	evtTypes := []events.Type{}
	all := len(q["type"]) == 0
	wanted := map[events.Type]struct{}{}
	for _, v := range q["type"] {
		t, ok := events.TryFromString(v)
		if !ok {
			return nil, nil, ErrInvalidRequest
		}
		if *t == events.All {
			all = true
		}
		evtTypes = append(evtTypes, *t)
		wanted[*t] = struct{}{}
	}

	filters := []func(events.Event) bool{}
	if !all {
		filters = append(filters, func(e events.Event) bool {
			_, ok := wanted[e.Type()]
			return ok
		})
	}
	if m := q.Get("market"); len(m) > 0 {
		filters = append(filters, events.GetMarketFilter(m))
	}
	if p := q.Get("party"); len(p) > 0 {
		filters = append(filters, events.GetPartyFilter(p))
	}
	return evtTypes, func(e events.Event) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}, nil
}

// ListEvents returns the last events kept by the node, oldest first.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start := time.Now()
	defer func() { metrics.APIRequestAndTimeREST("list_events", time.Since(start).Seconds()) }()

	q := r.URL.Query()
	_, filter, err := eventQuery(q)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	limit := defaultEventsLimit
	if raw := q.Get("limit"); len(raw) > 0 {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxEventsLimit {
			writeError(w, ErrInvalidRequest, http.StatusBadRequest)
			return
		}
	}

	evts := s.proto.RecentEvents(filter)
	if len(evts) > limit {
		evts = evts[len(evts)-limit:]
	}
	out := make([]EventResponse, 0, len(evts))
	for _, e := range evts {
		out = append(out, newEventResponse(e))
	}
	writeSuccess(w, out, http.StatusOK)
}

// StreamEvents writes the events as they are sent, one json object per
// line, until the client goes away or the server stops.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.APIRequestAndTimeREST("stream_events", 0)

	evtTypes, filter, err := eventQuery(r.URL.Query())
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, newError("streaming unsupported"), http.StatusInternalServerError)
		return
	}

	ch, cancel := s.proto.SubscribeEvents(r.Context(), evtTypes)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case batch := <-ch:
			for _, e := range batch {
				if !filter(e) {
					continue
				}
				if err := enc.Encode(newEventResponse(e)); err != nil {
					s.log.Debug("event stream closed", logging.Error(err))
					return
				}
			}
			flusher.Flush()
		}
	}
}
