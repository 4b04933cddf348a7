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
	"context"
	"fmt"
	"sync"
	"time"

	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	vgcontext "code.vegaprotocol.io/dustflow/libs/context"
	"code.vegaprotocol.io/dustflow/logging"
	"code.vegaprotocol.io/dustflow/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

var (
	ErrProcessorStopped    = errors.New("processor is stopped")
	ErrProcessorNotStarted = errors.New("processor is not started")
	ErrTxPanicked          = errors.New("transaction panicked")
)

// Broker - event bus the committed events are flushed to.
type Broker interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
}

// Clock is the source of the execution time of the transactions.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Tx is the body of a transaction. It runs with the processor lock held
// and must only touch the engines through the closure it was built with.
type Tx func(ctx context.Context) (interface{}, error)

type queuedTx struct {
	receipt *Receipt
	traceID string
	fn      Tx
	done    chan *Receipt
}

// Processor executes transactions one at a time. Every transaction either
// commits all of its effects or none of them.
type Processor struct {
	Config
	log     *logging.Logger
	journal *state.Journal
	broker  Broker
	buf     *Buffer
	clock   Clock

	// mu guards the engines, it is held by a running transaction and by views.
	mu       sync.Mutex
	queue    chan *queuedTx
	receipts *lru.Cache[string, *Receipt]

	tmu    sync.RWMutex
	inTx   bool
	txTime time.Time

	stopped chan struct{}
	started bool
}

func New(log *logging.Logger, cfg Config, journal *state.Journal, broker Broker, clock Clock) (*Processor, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	if clock == nil {
		clock = wallClock{}
	}
	if cfg.QueueSize < 0 {
		return nil, fmt.Errorf("invalid queue size %d", cfg.QueueSize)
	}
	receipts, err := lru.New[string, *Receipt](cfg.ReceiptCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create receipt cache")
	}

	return &Processor{
		Config:   cfg,
		log:      log,
		journal:  journal,
		broker:   broker,
		buf:      NewBuffer(broker),
		clock:    clock,
		queue:    make(chan *queuedTx, cfg.QueueSize),
		receipts: receipts,
		stopped:  make(chan struct{}),
	}, nil
}

// ReloadConf updates the internal configuration.
func (p *Processor) ReloadConf(cfg Config) {
	p.log.Info("reloading configuration")
	if p.log.GetLevel() != cfg.Level.Get() {
		p.log.Info("updating log level",
			logging.String("old", p.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		p.log.SetLevel(cfg.Level.Get())
	}

	// the queue and the cache keep the size they were created with.
	p.mu.Lock()
	p.LogTxs = cfg.LogTxs
	p.mu.Unlock()
}

// Broker returns the broker the engines have to send their events to.
func (p *Processor) Broker() *Buffer {
	return p.buf
}

// GetTimeNow returns the execution time of the running transaction,
// or the clock time when none is running.
func (p *Processor) GetTimeNow() time.Time {
	p.tmu.RLock()
	defer p.tmu.RUnlock()
	if p.inTx {
		return p.txTime
	}
	return p.clock.Now()
}

// Start runs the execution loop until the context is cancelled.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.loop(ctx)
}

// Done is closed once the execution loop has returned.
func (p *Processor) Done() <-chan struct{} {
	return p.stopped
}

func (p *Processor) loop(ctx context.Context) {
	defer close(p.stopped)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("processor stopped", logging.Int("queued", len(p.queue)))
			return
		case tx := <-p.queue:
			metrics.QueuedTxGaugeSet(len(p.queue))
			r := p.execute(ctx, tx)
			p.receipts.Add(r.TxID, r)
			tx.done <- r.clone()
		}
	}
}

// Submit queues the transaction and waits for it to be final. A cancelled
// context only stops the wait, a queued transaction is still executed,
// its receipt can be retrieved later with its id.
func (p *Processor) Submit(ctx context.Context, kind string, caller types.Address, fn Tx) (*Receipt, error) {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil, ErrProcessorNotStarted
	}

	ctx, traceID := vgcontext.TraceIDFromContext(ctx)
	tx := &queuedTx{
		receipt: &Receipt{
			TxID:        uuid.NewV4().String(),
			Kind:        kind,
			Caller:      caller,
			Status:      StatusPending,
			SubmittedAt: p.clock.Now(),
		},
		traceID: traceID,
		fn:      fn,
		done:    make(chan *Receipt, 1),
	}
	pending := tx.receipt.clone()
	p.receipts.Add(pending.TxID, pending)

	select {
	case <-p.stopped:
		p.receipts.Remove(pending.TxID)
		return pending, ErrProcessorStopped
	case <-ctx.Done():
		p.receipts.Remove(pending.TxID)
		return pending, ctx.Err()
	case p.queue <- tx:
		metrics.QueuedTxGaugeSet(len(p.queue))
	}

	select {
	case <-p.stopped:
		// the loop may have finished this one before stopping.
		select {
		case r := <-tx.done:
			return r, r.err
		default:
			return pending, ErrProcessorStopped
		}
	case <-ctx.Done():
		return pending, ctx.Err()
	case r := <-tx.done:
		return r, r.err
	}
}

// Receipt returns the last known receipt of a transaction.
func (p *Processor) Receipt(txID string) (*Receipt, bool) {
	r, ok := p.receipts.Get(txID)
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// View runs fn with the engines locked, fn must not mutate them.
func (p *Processor) View(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn()
}

// Exclusive runs fn between two transactions, used to reload the engines
// configuration or to snapshot their state.
func (p *Processor) Exclusive(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

func (p *Processor) execute(ctx context.Context, tx *queuedTx) *Receipt {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := tx.receipt
	now := p.clock.Now()
	p.setTx(true, now)
	defer p.setTx(false, time.Time{})

	txCtx := vgcontext.WithTraceID(ctx, tx.traceID)
	txCtx = vgcontext.WithTxID(txCtx, r.TxID)
	txCtx = vgcontext.WithTxTime(txCtx, now)
	txCtx = vgcontext.WithCaller(txCtx, r.Caller)

	start := time.Now()
	p.buf.hold()
	snap := p.journal.Snapshot()
	result, err := run(txCtx, tx.fn)

	var evts []events.Event
	if err != nil {
		p.journal.RevertToSnapshot(snap)
		p.buf.release()
		r.Status = StatusReverted
		r.Error = err.Error()
		r.err = err
	} else {
		p.journal.Reset()
		evts = p.buf.release()
		r.Status = StatusCommitted
		r.Result = result
	}
	r.ExecutedAt = now
	r.Events = len(evts)

	if len(evts) > 0 {
		p.broker.SendBatch(evts)
	}
	p.broker.Send(events.NewTxResult(txCtx, r.Kind, err))

	elapsed := time.Since(start)
	metrics.TxCounterInc(r.Kind, err == nil)
	metrics.TxTimeObserve(r.Kind, elapsed)

	if bool(p.LogTxs) && p.log.IsDebug() {
		p.log.Debug("transaction executed",
			logging.TxID(r.TxID),
			logging.String("kind", r.Kind),
			logging.Address("caller", r.Caller),
			logging.String("status", r.Status.String()),
			logging.Int("events", r.Events),
			logging.Duration("elapsed", elapsed),
		)
	}
	if err != nil {
		p.log.Debug("transaction reverted",
			logging.TxID(r.TxID),
			logging.String("kind", r.Kind),
			logging.Error(err),
		)
	}
	return r
}

func (p *Processor) setTx(in bool, t time.Time) {
	p.tmu.Lock()
	p.inTx = in
	p.txTime = t
	p.tmu.Unlock()
}

func run(ctx context.Context, fn Tx) (res interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.Wrapf(ErrTxPanicked, "%v", r)
		}
	}()
	return fn(ctx)
}
