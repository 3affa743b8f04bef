// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package processor

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts what a processor classified. One Metrics may be shared by
// every processor of a program.
type Metrics struct {
	sequences *prometheus.CounterVec
	unknown   prometheus.Counter
	chars     prometheus.Counter
}

// NewMetrics creates the counters and registers them to reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var m Metrics

	m.sequences = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtseq",
		Name:      "sequences_total",
		Help:      "Total number of recognized control sequences",
	}, []string{"pattern"})

	m.unknown = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vtseq",
		Name:      "unknown_sequences_total",
		Help:      "Total number of sequences no pattern accepted",
	})

	m.chars = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vtseq",
		Name:      "chars_total",
		Help:      "Total number of characters passed through as text",
	})

	reg.MustRegister(m.sequences, m.unknown, m.chars)
	return &m
}

func (m *Metrics) sequence(pattern string) {
	if m != nil {
		m.sequences.WithLabelValues(pattern).Inc()
	}
}

func (m *Metrics) unknownSequence() {
	if m != nil {
		m.unknown.Inc()
	}
}

func (m *Metrics) char() {
	if m != nil {
		m.chars.Inc()
	}
}
