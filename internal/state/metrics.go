package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clubdata",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Mutations by collection, operation and outcome.",
	}, []string{"collection", "op", "outcome"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clubdata",
		Subsystem: "store",
		Name:      "loads_total",
		Help:      "Initial load attempts by collection and result.",
	}, []string{"collection", "result"})
)
