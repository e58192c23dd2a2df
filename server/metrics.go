package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	validations  *prometheus.CounterVec
	trajectories prometheus.Counter
	enumeration  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "narrative",
			Name:      "validations_total",
			Help:      "Domains validated, by result.",
		}, []string{"result"}),
		trajectories: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narrative",
			Name:      "trajectories_generated_total",
			Help:      "Trajectories produced by enumeration.",
		}),
		enumeration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "narrative",
			Name:      "enumeration_duration_seconds",
			Help:      "Time spent enumerating and ranking trajectories.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.validations, m.trajectories, m.enumeration)
	return m
}

func (m *metrics) observeValidation(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.validations.WithLabelValues(result).Inc()
}
