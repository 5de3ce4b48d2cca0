// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeReceived     = "received"
	outcomeTimedOut     = "timed_out"
	outcomeDisconnected = "disconnected"
)

var (
	registerOnce sync.Once

	selections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sel",
			Subsystem: "stress",
			Name:      "selections_total",
			Help:      "Completed selections by outcome.",
		},
		[]string{"flavor", "outcome"},
	)
	selectDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sel",
			Subsystem: "stress",
			Name:      "selection_duration_seconds",
			Help:      "Time from starting a selection to its outcome.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		},
		[]string{"flavor", "outcome"},
	)
)

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(selections, selectDuration)
	})
}

func recordSelection(flavor, outcome string, d time.Duration) {
	registerMetrics()
	selections.WithLabelValues(flavor, outcome).Inc()
	selectDuration.WithLabelValues(flavor, outcome).Observe(d.Seconds())
}
