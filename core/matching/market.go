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

package matching

import (
	"context"
	"time"

	"code.vegaprotocol.io/dustflow/core/assets"
	"code.vegaprotocol.io/dustflow/core/events"
	"code.vegaprotocol.io/dustflow/core/state"
	"code.vegaprotocol.io/dustflow/core/types"
	"code.vegaprotocol.io/dustflow/libs/num"
	"code.vegaprotocol.io/dustflow/logging"

	"github.com/pkg/errors"
)

// ErrEmptySide signals there is no live order on a side of the book.
var ErrEmptySide = errors.New("no live order on this side of the book")

// Broker - event bus.
type Broker interface {
	Send(e events.Event)
	SendBatch(evts []events.Event)
}

// TimeService provides the time of the transaction being executed.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/time_service_mock.go -package mocks code.vegaprotocol.io/dustflow/core/matching TimeService
type TimeService interface {
	GetTimeNow() time.Time
}

// Market is the order book of a single market. Orders rest until a taker
// names them in MatchTrade, there is no automatic matching.
// Every mutating call is all or nothing: on error the journal is reverted to
// the state at entry and no event is sent.
type Market struct {
	log     *logging.Logger
	cfg     Config
	record  types.MarketRecord
	base    assets.Token
	quote   assets.Token
	journal *state.Journal
	broker  Broker
	timeSvc TimeService
	scale   *num.Uint

	orders      []*types.Order
	buy         *OrderBookSide
	sell        *OrderBookSide
	tradeSeq    uint64
	escrowBase  *num.Uint
	escrowQuote *num.Uint

	locked  bool
	pending []events.Event
}

// NewMarket creates the book of the market described by record. base is
// the market collateral asset, quote the asset prices are expressed in.
func NewMarket(
	log *logging.Logger,
	cfg Config,
	record types.MarketRecord,
	base, quote assets.Token,
	journal *state.Journal,
	broker Broker,
	timeSvc TimeService,
) *Market {
	log = log.Named(namedLogger).With(logging.MarketID(record.MarketID))
	log.SetLevel(cfg.Level.Get())

	return &Market{
		log:         log,
		cfg:         cfg,
		record:      record,
		base:        base,
		quote:       quote,
		journal:     journal,
		broker:      broker,
		timeSvc:     timeSvc,
		scale:       cfg.PriceScale(),
		orders:      []*types.Order{},
		buy:         newSide(types.SideBuy),
		sell:        newSide(types.SideSell),
		escrowBase:  num.UintZero(),
		escrowQuote: num.UintZero(),
	}
}

// ReloadConf updates the log level. The price scale is fixed for the
// lifetime of the market.
func (m *Market) ReloadConf(cfg Config) {
	m.log.Info("reloading configuration")
	if m.log.GetLevel() != cfg.Level.Get() {
		m.log.Info("updating log level",
			logging.String("old", m.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		m.log.SetLevel(cfg.Level.Get())
	}

	m.cfg.Level = cfg.Level
	m.cfg.LogPriceLevelsDebug = cfg.LogPriceLevelsDebug
}

func (m *Market) Address() types.Address {
	return m.record.MarketAddress
}

func (m *Market) MarketID() uint64 {
	return m.record.MarketID
}

func (m *Market) Record() types.MarketRecord {
	return m.record
}

// PriceScale is the fixed point unit of prices.
func (m *Market) PriceScale() *num.Uint {
	return m.scale.Clone()
}

func (m *Market) PriceDecimals() uint32 {
	return m.cfg.PriceDecimals
}

// IsExpired reports whether the settlement window is over at the given time.
// A zero settlement duration never expires.
func (m *Market) IsExpired(now time.Time) bool {
	if m.record.Config.SettlementDuration <= 0 {
		return false
	}
	return !now.Before(m.record.ExpiresAt())
}

// PutTrade places a resting order and escrows what it could deliver: the
// amount of base for a sell, amount * price / scale of quote for a buy.
func (m *Market) PutTrade(ctx context.Context, caller types.Address, side types.Side, amount, price *num.Uint) (uint64, error) {
	var id uint64
	err := m.atomic(func() error {
		var err error
		id, err = m.putTrade(ctx, caller, side, amount, price)
		return err
	})
	if err != nil {
		m.log.Debug("put trade rejected",
			logging.Address("trader", caller),
			logging.String("side", side.String()),
			logging.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (m *Market) putTrade(ctx context.Context, caller types.Address, side types.Side, amount, price *num.Uint) (uint64, error) {
	if err := m.validate(caller, side, amount, price); err != nil {
		return 0, err
	}
	now := m.timeSvc.GetTimeNow()
	if m.IsExpired(now) {
		return 0, types.ErrMarketExpired
	}

	token, escrow := m.base, amount.Clone()
	if side == types.SideBuy {
		token = m.quote
		q, overflow := num.UintZero().MulDiv(amount, price, m.scale)
		if overflow || q.IsZero() {
			return 0, types.ErrInvalidAmount
		}
		escrow = q
	}
	if token.Allowance(caller, m.Address()).LT(escrow) {
		return 0, types.ErrInsufficientAllowance
	}

	order := &types.Order{
		ID:              uint64(len(m.orders)),
		Market:          m.Address(),
		Trader:          caller,
		Side:            side,
		Amount:          amount.Clone(),
		Price:           price.Clone(),
		Remaining:       amount.Clone(),
		Status:          types.OrderStatusOpen,
		EscrowRemaining: escrow.Clone(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.appendOrder(order)
	m.addDepth(order.Side, order.Price, order.Remaining, 1)
	m.addEscrow(side, escrow)

	if !token.TransferFrom(ctx, m.Address(), caller, m.Address(), escrow) {
		return 0, types.ErrTransferFailed
	}

	m.log.Debug("order placed", logging.OrderID(order.ID), logging.String("order", order.String()))
	m.emit(events.NewOrderEvent(ctx, order))
	return order.ID, nil
}

type fill struct {
	order  *types.Order
	size   *num.Uint
	quote  *num.Uint
	refund *num.Uint
}

// MatchTrade fills the caller against the resting orders it names, in the
// given order, at each resting order price. Ids which cannot match are
// skipped, an unknown id fails the call. The unfilled part of the taker
// amount does not rest. It returns the cumulative filled size.
func (m *Market) MatchTrade(ctx context.Context, caller types.Address, side types.Side, amount, price *num.Uint, orderIDs []uint64) (*num.Uint, error) {
	var filled *num.Uint
	err := m.atomic(func() error {
		var err error
		filled, err = m.matchTrade(ctx, caller, side, amount, price, orderIDs)
		return err
	})
	if err != nil {
		m.log.Debug("match trade rejected",
			logging.Address("taker", caller),
			logging.String("side", side.String()),
			logging.Uint64s("order-ids", orderIDs),
			logging.Error(err),
		)
		return nil, err
	}
	return filled, nil
}

func (m *Market) matchTrade(ctx context.Context, caller types.Address, side types.Side, amount, price *num.Uint, orderIDs []uint64) (*num.Uint, error) {
	if err := m.validate(caller, side, amount, price); err != nil {
		return nil, err
	}
	now := m.timeSvc.GetTimeNow()
	if m.IsExpired(now) {
		return nil, types.ErrMarketExpired
	}

	var (
		left   = amount.Clone()
		needed = num.UintZero()
		fills  = make([]fill, 0, len(orderIDs))
		seen   = make(map[uint64]struct{}, len(orderIDs))
	)
	for _, id := range orderIDs {
		if left.IsZero() {
			break
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		o, err := m.order(id)
		if err != nil {
			return nil, err
		}
		if !m.canMatch(o, side, price) {
			continue
		}
		size := num.Min(left, o.Remaining).Clone()
		quote, overflow := num.UintZero().MulDiv(size, o.Price, m.scale)
		if overflow {
			return nil, types.ErrInvalidAmount
		}
		if quote.IsZero() {
			continue
		}

		f := fill{order: o, size: size, quote: quote, refund: num.UintZero()}
		m.applyFill(&f, now)
		fills = append(fills, f)
		left.Sub(left, size)
		if side == types.SideBuy {
			needed.Add(needed, quote)
		} else {
			needed.Add(needed, size)
		}
	}
	if len(fills) == 0 {
		return nil, types.ErrNothingMatched
	}

	// taker leg is pulled with the allowance granted to the market
	pay := m.base
	if side == types.SideBuy {
		pay = m.quote
	}
	if pay.Allowance(caller, m.Address()).LT(needed) {
		return nil, types.ErrInsufficientAllowance
	}
	for _, f := range fills {
		if err := m.settle(ctx, caller, side, f); err != nil {
			return nil, err
		}
	}

	filled := num.UintZero().Sub(amount, left)
	for _, f := range fills {
		m.tradeSeq++
		seq := m.tradeSeq
		m.journal.Append(func() { m.tradeSeq = seq - 1 })
		m.emit(events.NewOrderEvent(ctx, f.order))
		m.emit(events.NewTradeEvent(ctx, types.Trade{
			Seq:          seq,
			Market:       m.Address(),
			MakerOrderID: f.order.ID,
			Maker:        f.order.Trader,
			Taker:        caller,
			TakerSide:    side,
			Size:         f.size.Clone(),
			Price:        f.order.Price.Clone(),
			QuoteAmount:  f.quote.Clone(),
			Timestamp:    now,
		}))
	}
	m.log.Debug("taker matched",
		logging.Address("taker", caller),
		logging.BigUint("filled", filled),
		logging.Int("fills", len(fills)),
	)
	return filled, nil
}

func (m *Market) canMatch(o *types.Order, side types.Side, price *num.Uint) bool {
	if o.Status.IsTerminal() || o.Side == side {
		return false
	}
	if side == types.SideBuy {
		return o.Price.LTE(price)
	}
	return o.Price.GTE(price)
}

// applyFill updates the resting order, the depth and the escrow totals.
func (m *Market) applyFill(f *fill, now time.Time) {
	o := f.order
	released := f.size
	if o.Side == types.SideBuy {
		released = f.quote
	}
	m.removeDepth(o.Side, o.Price, f.size, 0)
	m.updateOrder(o, func(o *types.Order) {
		o.Remaining.Sub(o.Remaining, f.size)
		o.EscrowRemaining.Sub(o.EscrowRemaining, released)
		o.UpdatedAt = now
		o.Status = types.OrderStatusPartiallyFilled
		if o.Remaining.IsZero() {
			o.Status = types.OrderStatusFilled
			f.refund = o.EscrowRemaining.Clone()
			o.EscrowRemaining = num.UintZero()
		}
	})
	if o.Status == types.OrderStatusFilled {
		m.removeDepth(o.Side, o.Price, num.UintZero(), 1)
	}
	m.subEscrow(o.Side, num.Sum(released, f.refund))
}

// settle moves the funds of a single fill, escrow legs use Transfer and
// the taker leg uses TransferFrom.
func (m *Market) settle(ctx context.Context, taker types.Address, side types.Side, f fill) error {
	var (
		self  = m.Address()
		maker = f.order.Trader
		ok    bool
	)
	if side == types.SideBuy {
		ok = m.base.Transfer(ctx, self, taker, f.size) &&
			m.quote.TransferFrom(ctx, self, taker, maker, f.quote)
	} else {
		ok = m.base.TransferFrom(ctx, self, taker, maker, f.size) &&
			m.quote.Transfer(ctx, self, taker, f.quote)
	}
	if ok && !f.refund.IsZero() {
		ok = m.escrowToken(f.order.Side).Transfer(ctx, self, maker, f.refund)
	}
	if !ok {
		return types.ErrTransferFailed
	}
	return nil
}

// CancelTrade closes a live order and refunds its remaining escrow. It is
// allowed after the settlement window so escrow can always be recovered.
func (m *Market) CancelTrade(ctx context.Context, caller types.Address, orderID uint64) error {
	err := m.atomic(func() error {
		o, err := m.order(orderID)
		if err != nil {
			return err
		}
		if o.Trader != caller {
			return types.ErrUnauthorized
		}
		if o.Status.IsTerminal() {
			return types.ErrOrderNotCancellable
		}

		refund := o.EscrowRemaining.Clone()
		m.removeDepth(o.Side, o.Price, o.Remaining, 1)
		m.subEscrow(o.Side, refund)
		m.updateOrder(o, func(o *types.Order) {
			o.Status = types.OrderStatusCancelled
			o.EscrowRemaining = num.UintZero()
			o.UpdatedAt = m.timeSvc.GetTimeNow()
		})
		if !refund.IsZero() && !m.escrowToken(o.Side).Transfer(ctx, m.Address(), caller, refund) {
			return types.ErrTransferFailed
		}
		m.emit(events.NewOrderEvent(ctx, o))
		return nil
	})
	if err != nil {
		m.log.Debug("cancel rejected", logging.OrderID(orderID), logging.Error(err))
	}
	return err
}

func (m *Market) validate(caller types.Address, side types.Side, amount, price *num.Uint) error {
	switch {
	case !side.IsValid():
		return types.ErrInvalidSide
	case amount == nil || amount.IsZero():
		return types.ErrInvalidAmount
	case price == nil || price.IsZero():
		return types.ErrInvalidPrice
	case types.IsZeroAddress(caller):
		return types.ErrInvalidAddress
	}
	return nil
}

// atomic runs fn under the reentrancy guard inside a journal snapshot.
// Events emitted by fn are only sent if it succeeds.
func (m *Market) atomic(fn func() error) error {
	if m.locked {
		return types.ErrReentrantCall
	}
	m.locked = true
	defer func() { m.locked = false }()

	snap := m.journal.Snapshot()
	m.pending = nil
	if err := fn(); err != nil {
		m.journal.RevertToSnapshot(snap)
		m.pending = nil
		return err
	}
	if len(m.pending) > 0 {
		m.broker.SendBatch(m.pending)
	}
	m.pending = nil
	return nil
}

func (m *Market) emit(e events.Event) {
	m.pending = append(m.pending, e)
}

func (m *Market) escrowToken(side types.Side) assets.Token {
	if side == types.SideBuy {
		return m.quote
	}
	return m.base
}

func (m *Market) getSide(side types.Side) *OrderBookSide {
	if side == types.SideBuy {
		return m.buy
	}
	return m.sell
}

func (m *Market) order(id uint64) (*types.Order, error) {
	if id >= uint64(len(m.orders)) {
		return nil, types.ErrOrderNotFound
	}
	return m.orders[id], nil
}

func (m *Market) appendOrder(o *types.Order) {
	n := len(m.orders)
	m.journal.Append(func() { m.orders = m.orders[:n] })
	m.orders = append(m.orders, o)
}

func (m *Market) updateOrder(o *types.Order, fn func(o *types.Order)) {
	prev := o.Clone()
	m.journal.Append(func() { *o = *prev })
	fn(o)
}

func (m *Market) addDepth(side types.Side, price, volume *num.Uint, orders uint64) {
	s := m.getSide(side)
	price, volume = price.Clone(), volume.Clone()
	s.add(price, volume, orders)
	m.journal.Append(func() { s.remove(price, volume, orders) })
	if m.cfg.LogPriceLevelsDebug {
		m.log.Debug("price level added", logging.BigUint("price", price), logging.BigUint("volume", volume))
	}
}

func (m *Market) removeDepth(side types.Side, price, volume *num.Uint, orders uint64) {
	s := m.getSide(side)
	price, volume = price.Clone(), volume.Clone()
	s.remove(price, volume, orders)
	m.journal.Append(func() { s.add(price, volume, orders) })
	if m.cfg.LogPriceLevelsDebug {
		m.log.Debug("price level removed", logging.BigUint("price", price), logging.BigUint("volume", volume))
	}
}

func (m *Market) escrowTotal(side types.Side) **num.Uint {
	if side == types.SideBuy {
		return &m.escrowQuote
	}
	return &m.escrowBase
}

func (m *Market) addEscrow(side types.Side, amount *num.Uint) {
	ptr := m.escrowTotal(side)
	prev := *ptr
	m.journal.Append(func() { *ptr = prev })
	*ptr = num.Sum(prev, amount)
}

func (m *Market) subEscrow(side types.Side, amount *num.Uint) {
	ptr := m.escrowTotal(side)
	prev := *ptr
	m.journal.Append(func() { *ptr = prev })
	*ptr = num.UintZero().Sub(prev, amount)
}
