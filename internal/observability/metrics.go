// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for dslqueue_polls_total.
const (
	OutcomePayload = "payload"
	OutcomeEmpty   = "empty"
	OutcomeExit    = "exit"
	OutcomeProbe   = "probe"
)

// Metrics holds the server's prometheus collectors. The registerer is
// injected so tests can use an isolated registry.
type Metrics struct {
	polls    *prometheus.CounterVec
	enqueued prometheus.Counter
	rejected prometheus.Counter
	depth    prometheus.GaugeFunc
}

// New registers the dslqueue collectors. depth feeds the queue gauge.
func New(reg prometheus.Registerer, depth func() int) *Metrics {
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dslqueue_polls_total",
		Help: "Poll requests served, labeled by protocol outcome.",
	}, []string{"outcome"})
	enqueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dslqueue_enqueued_total",
		Help: "Payloads accepted into the queue.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dslqueue_rejected_total",
		Help: "Submissions rejected as blank or malformed.",
	})
	depthGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dslqueue_queue_depth",
		Help: "Current number of queued payloads.",
	}, func() float64 { return float64(depth()) })

	reg.MustRegister(polls, enqueued, rejected, depthGauge)

	return &Metrics{
		polls:    polls,
		enqueued: enqueued,
		rejected: rejected,
		depth:    depthGauge,
	}
}

// CountPoll records one served poll with its outcome label.
func (m *Metrics) CountPoll(outcome string) {
	m.polls.WithLabelValues(outcome).Inc()
}

// CountEnqueued records one accepted payload.
func (m *Metrics) CountEnqueued() {
	m.enqueued.Inc()
}

// CountRejected records one rejected submission.
func (m *Metrics) CountRejected() {
	m.rejected.Inc()
}
