package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики снапшот-кэша и активации заказов.
var (
	// SnapshotCacheHits — кэш-попадания снапшотов по виду сущности
	// (recipe / product).
	SnapshotCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabrica_snapshot_cache_hits_total",
		Help: "Snapshot requests served by an existing fresh snapshot",
	}, []string{"entity"})

	// SnapshotCacheMisses — созданные новые версии снапшотов.
	SnapshotCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabrica_snapshot_cache_misses_total",
		Help: "Snapshot requests that created a new snapshot version",
	}, []string{"entity"})

	// Activations — активации заказов по исходу (ok / error).
	Activations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fabrica_project_activations_total",
		Help: "Project activation attempts by outcome",
	}, []string{"outcome"})

	// ActivationTasks — количество tasks, развёрнутых активациями.
	ActivationTasks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabrica_activation_tasks_created_total",
		Help: "Tasks fanned out by successful project activations",
	})
)
