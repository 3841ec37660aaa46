package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Metrics
// ============================================================

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mjcf_store_mutations_total",
		Help: "Scene mutations applied, by operation",
	}, []string{"op"})

	undoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mjcf_store_undo_total",
		Help: "Undo steps applied",
	})

	redoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mjcf_store_redo_total",
		Help: "Redo steps applied",
	})

	rejectedXMLTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mjcf_store_rejected_xml_total",
		Help: "XML edits dropped because the text did not parse",
	})
)
