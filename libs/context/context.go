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

package context

import (
	"context"
	"time"

	uuid "github.com/satori/go.uuid"
)

type key int

const (
	traceIDKey key = iota
	txIDKey
	callerKey
	txTimeKey
)

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, tID string) context.Context {
	return context.WithValue(ctx, traceIDKey, tID)
}

// TraceIDFromContext returns the trace id of the context, generating
// and attaching a new one when none is set.
func TraceIDFromContext(ctx context.Context) (context.Context, string) {
	if tID, ok := ctx.Value(traceIDKey).(string); ok && tID != "" {
		return ctx, tID
	}
	tID := uuid.NewV4().String()
	return WithTraceID(ctx, tID), tID
}

func WithTxID(ctx context.Context, txID string) context.Context {
	return context.WithValue(ctx, txIDKey, txID)
}

func TxIDFromContext(ctx context.Context) (string, bool) {
	txID, ok := ctx.Value(txIDKey).(string)
	return txID, ok
}

// WithTxTime sets the time a transaction is executed at.
func WithTxTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, txTimeKey, t)
}

func TxTimeFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(txTimeKey).(time.Time)
	return t, ok
}

// WithCaller records the authenticated caller of a request.
func WithCaller(ctx context.Context, caller [20]byte) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

func CallerFromContext(ctx context.Context) ([20]byte, bool) {
	c, ok := ctx.Value(callerKey).([20]byte)
	return c, ok
}
