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

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"code.vegaprotocol.io/dustflow/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram
	// Summary ...
	Summary
)

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	queuedTxGauge prometheus.Gauge
	txCounter     *prometheus.CounterVec
	txTime        *prometheus.HistogramVec
	snapshotTime  prometheus.Histogram
	orderCounter  *prometheus.CounterVec
	tradeCounter  *prometheus.CounterVec
	// Call counters for each request type per API
	apiRequestCallCounter *prometheus.CounterVec
	// Latency of each request type per API
	apiRequestTime *prometheus.SummaryVec
)

// abstract prometheus types
type instrument int

// combine all possible prometheus options + way to differentiate between regular or vector type
type instrumentOpts struct {
	opts               prometheus.Opts
	buckets            []float64
	objectives         map[float64]float64
	maxAge             time.Duration
	ageBuckets, bufCap uint32
	vectors            []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
	summaryV   *prometheus.SummaryVec
	summary    prometheus.Summary
}

// MetricInstrument - template interface for mi type return value - only mock if needed, and only mock the funcs you use
type MetricInstrument interface {
	Gauge() (prometheus.Gauge, error)
	GaugeVec() (*prometheus.GaugeVec, error)
	Counter() (prometheus.Counter, error)
	CounterVec() (*prometheus.CounterVec, error)
	Histogram() (prometheus.Histogram, error)
	HistogramVec() (*prometheus.HistogramVec, error)
	Summary() (prometheus.Summary, error)
	SummaryVec() (*prometheus.SummaryVec, error)
}

// InstrumentOption - vararg for instrument options setting
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Subsystem - set subsystem... obviously
func Subsystem(s string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Subsystem = s
	}
}

// Labels set labels for instrument (similar to vector, but with given values)
func Labels(labels map[string]string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.ConstLabels = prometheus.Labels(labels)
	}
}

// Buckets - specific to histogram type
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// Objectives - specific to summary type
func Objectives(obj map[float64]float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.objectives = obj
	}
}

// MaxAge - specific to summary type
func MaxAge(m time.Duration) InstrumentOption {
	return func(o *instrumentOpts) {
		o.maxAge = m
	}
}

// AgeBuckets - specific to summary type
func AgeBuckets(ab uint32) InstrumentOption {
	return func(o *instrumentOpts) {
		o.ageBuckets = ab
	}
}

// BufCap - specific to summary type
func BufCap(bc uint32) InstrumentOption {
	return func(o *instrumentOpts) {
		o.bufCap = bc
	}
}

// AddInstrument  configure and register new metrics instrument
// this will, over time, be moved to use custom Registries, etc...
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (MetricInstrument, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	// apply options
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := opt.gauge()
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := opt.counter()
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	case Summary:
		o := opt.summary()
		if len(opt.vectors) == 0 {
			ret.summary = prometheus.NewSummary(o)
			col = ret.summary
		} else {
			ret.summaryV = prometheus.NewSummaryVec(o, opt.vectors)
			col = ret.summaryV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Start enable metrics (given config), the handler is served until ctx is done.
func Start(ctx context.Context, log *logging.Logger, conf Config) {
	if !conf.Enabled {
		return
	}
	if err := setupMetrics(conf.Labels); err != nil {
		log.Panic("could not set up metrics", logging.Error(err))
	}
	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", logging.Error(err))
		}
	}()
}

func (i instrumentOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts(i.opts)
}

func (i instrumentOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts(i.opts)
}

func (i instrumentOpts) summary() prometheus.SummaryOpts {
	return prometheus.SummaryOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Objectives:  i.objectives,
		MaxAge:      i.maxAge,
		AgeBuckets:  i.ageBuckets,
		BufCap:      i.bufCap,
	}
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

// Gauge returns a prometheus Gauge instrument
func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

// GaugeVec returns a prometheus GaugeVec instrument
func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

// Counter returns a prometheus Counter instrument
func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

// CounterVec returns a prometheus CounterVec instrument
func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) Histogram() (prometheus.Histogram, error) {
	if m.histogram == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogram, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

func (m mi) Summary() (prometheus.Summary, error) {
	if m.summary == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.summary, nil
}

func (m mi) SummaryVec() (*prometheus.SummaryVec, error) {
	if m.summaryV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.summaryV, nil
}

func setupMetrics(labels map[string]string) error {
	common := []InstrumentOption{Namespace("dustflow"), Labels(labels)}
	with := func(opts ...InstrumentOption) []InstrumentOption {
		return append(append([]InstrumentOption{}, common...), opts...)
	}

	h, err := AddInstrument(
		Counter,
		"tx_total",
		with(
			Vectors("kind", "result"),
			Help("Number of transactions executed"),
		)...,
	)
	if err != nil {
		return err
	}
	tc, err := h.CounterVec()
	if err != nil {
		return err
	}
	txCounter = tc

	h, err = AddInstrument(
		Histogram,
		"tx_duration_seconds",
		with(
			Vectors("kind"),
			Buckets(prometheus.ExponentialBuckets(0.0001, 4, 8)),
			Help("Time spent executing transactions"),
		)...,
	)
	if err != nil {
		return err
	}
	tt, err := h.HistogramVec()
	if err != nil {
		return err
	}
	txTime = tt

	h, err = AddInstrument(
		Histogram,
		"snapshot_duration_seconds",
		with(
			Buckets(prometheus.ExponentialBuckets(0.001, 4, 8)),
			Help("Time spent writing a snapshot"),
		)...,
	)
	if err != nil {
		return err
	}
	st, err := h.Histogram()
	if err != nil {
		return err
	}
	snapshotTime = st

	h, err = AddInstrument(
		Counter,
		"orders_total",
		with(
			Vectors("market", "side"),
			Help("Number of orders placed"),
		)...,
	)
	if err != nil {
		return err
	}
	ot, err := h.CounterVec()
	if err != nil {
		return err
	}
	orderCounter = ot

	h, err = AddInstrument(
		Counter,
		"trades_total",
		with(
			Vectors("market"),
			Help("Number of trades settled"),
		)...,
	)
	if err != nil {
		return err
	}
	trc, err := h.CounterVec()
	if err != nil {
		return err
	}
	tradeCounter = trc

	h, err = AddInstrument(
		Gauge,
		"queuedtx",
		with(Help("Number of transactions waiting to be processed"))...,
	)
	if err != nil {
		return err
	}
	qtxg, err := h.Gauge()
	if err != nil {
		return err
	}
	queuedTxGauge = qtxg

	//
	// API usage metrics start here
	//

	// Number of calls to each request type
	h, err = AddInstrument(
		Counter,
		"request_count_total",
		with(
			Vectors("apiType", "requestType"),
			Help("Count of API requests"),
		)...,
	)
	if err != nil {
		return err
	}
	rc, err := h.CounterVec()
	if err != nil {
		return err
	}
	apiRequestCallCounter = rc

	// Latency quantiles of each request type for each api type
	h, err = AddInstrument(
		Summary,
		"request_duration_seconds",
		with(
			Vectors("apiType", "requestType"),
			Objectives(map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}),
			MaxAge(10*time.Minute),
			AgeBuckets(5),
			BufCap(500),
			Help("Time spent in each API request"),
		)...,
	)
	if err != nil {
		return err
	}
	rpac, err := h.SummaryVec()
	if err != nil {
		return err
	}
	apiRequestTime = rpac

	return nil
}

// TxCounterInc increments the transaction counter
func TxCounterInc(kind string, ok bool) {
	if txCounter == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "reverted"
	}
	txCounter.WithLabelValues(kind, result).Inc()
}

// TxTimeObserve records the execution time of a transaction
func TxTimeObserve(kind string, d time.Duration) {
	if txTime == nil {
		return
	}
	txTime.WithLabelValues(kind).Observe(d.Seconds())
}

// SnapshotTimeObserve records the time taken to write a snapshot
func SnapshotTimeObserve(d time.Duration) {
	if snapshotTime == nil {
		return
	}
	snapshotTime.Observe(d.Seconds())
}

// OrderCounterInc increments the order counter
func OrderCounterInc(labelValues ...string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(labelValues...).Inc()
}

// TradeCounterAdd adds n trades of a market
func TradeCounterAdd(n int, market string) {
	if tradeCounter == nil {
		return
	}
	tradeCounter.WithLabelValues(market).Add(float64(n))
}

// QueuedTxGaugeSet update the number of transactions waiting for execution
func QueuedTxGaugeSet(n int) {
	if queuedTxGauge == nil {
		return
	}
	queuedTxGauge.Set(float64(n))
}

// APIRequestAndTimeREST updates the metrics for REST API calls
func APIRequestAndTimeREST(request string, time float64) {
	if apiRequestCallCounter == nil || apiRequestTime == nil {
		return
	}
	apiRequestCallCounter.WithLabelValues("REST", request).Inc()
	apiRequestTime.WithLabelValues("REST", request).Observe(time)
}
