package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/galaxyfield/aimcore/collision"
	"github.com/galaxyfield/aimcore/interaction"
)

const (
	categoryLabel = "category"
	phaseLabel    = "to"
)

var (
	detectionPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aimcore_detection_passes_total",
		Help: "The number of detection passes that ran.",
	})

	throttledUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aimcore_throttled_updates_total",
		Help: "The number of updates skipped by the throttle.",
	})

	transitionCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aimcore_transitions_total",
		Help: "The number of interaction state transitions.",
	}, []string{categoryLabel, phaseLabel})

	registrySwaps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aimcore_registry_swaps_total",
		Help: "The number of times a box collection was replaced.",
	}, []string{categoryLabel})
)

func instrumentDetectionPass() {
	detectionPasses.Inc()
}

func instrumentThrottled() {
	throttledUpdates.Inc()
}

func instrumentTransition(t interaction.Transition) {
	transitionCount.
		With(prometheus.Labels{categoryLabel: t.Category.String(), phaseLabel: t.To.String()}).
		Inc()
}

func instrumentRegistrySwap(c collision.Category) {
	registrySwaps.
		With(prometheus.Labels{categoryLabel: c.String()}).
		Inc()
}
