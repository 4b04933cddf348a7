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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddInstrument(t *testing.T) {
	t.Run("A counter vector is registered and typed", func(t *testing.T) {
		h, err := AddInstrument(Counter, "test_counter_vec_total", Namespace("dustflow_test"), Vectors("kind"))
		require.NoError(t, err)
		cv, err := h.CounterVec()
		require.NoError(t, err)
		cv.WithLabelValues("a").Inc()

		_, err = h.Counter()
		assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)
	})
	t.Run("Registering the same name twice fails", func(t *testing.T) {
		_, err := AddInstrument(Gauge, "test_gauge", Namespace("dustflow_test"))
		require.NoError(t, err)
		_, err = AddInstrument(Gauge, "test_gauge", Namespace("dustflow_test"))
		var are prometheus.AlreadyRegisteredError
		assert.ErrorAs(t, err, &are)
	})
	t.Run("Histograms and summaries take their options", func(t *testing.T) {
		h, err := AddInstrument(Histogram, "test_histogram_seconds", Namespace("dustflow_test"), Buckets([]float64{0.1, 1}))
		require.NoError(t, err)
		hist, err := h.Histogram()
		require.NoError(t, err)
		hist.Observe(0.5)
		_, err = h.HistogramVec()
		assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)

		s, err := AddInstrument(Summary, "test_summary_seconds",
			Namespace("dustflow_test"),
			Labels(map[string]string{"node": "a"}),
			Objectives(map[float64]float64{0.5: 0.05}),
			MaxAge(time.Minute),
			AgeBuckets(2),
			BufCap(10),
		)
		require.NoError(t, err)
		sum, err := s.Summary()
		require.NoError(t, err)
		sum.Observe(1)
		_, err = s.SummaryVec()
		assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)
	})
	t.Run("Unknown instruments are rejected", func(t *testing.T) {
		_, err := AddInstrument(instrument(42), "test_unknown")
		assert.ErrorIs(t, err, ErrInstrumentNotSupported)
	})
	t.Run("Helpers are no-ops before setup", func(t *testing.T) {
		assert.NotPanics(t, func() {
			TxCounterInc("put_trade", true)
			QueuedTxGaugeSet(3)
			TradeCounterAdd(1, "0x00")
		})
	})
}

func TestSetupMetrics(t *testing.T) {
	require.NoError(t, setupMetrics(map[string]string{"node": "test"}))

	TxCounterInc("put_trade", true)
	TxTimeObserve("put_trade", 2*time.Millisecond)
	SnapshotTimeObserve(10 * time.Millisecond)
	APIRequestAndTimeREST("put_trade", 0.003)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "node" && l.GetValue() == "test" {
					found[f.GetName()] = true
				}
			}
		}
	}
	for _, name := range []string{
		"dustflow_tx_total",
		"dustflow_tx_duration_seconds",
		"dustflow_snapshot_duration_seconds",
		"dustflow_request_duration_seconds",
		"dustflow_request_count_total",
	} {
		assert.True(t, found[name], name)
	}
}
