// Package metrics provides Prometheus metrics for the VFS.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transaction metrics
	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskvfs_transactions_total",
			Help: "Total number of VFS mutation transactions",
		},
		[]string{"op", "status"},
	)

	transactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deskvfs_transaction_duration_seconds",
			Help:    "VFS mutation duration in seconds, including the snapshot write",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	snapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deskvfs_snapshot_bytes",
			Help: "Size of the last committed snapshot",
		},
	)

	// Tree metrics
	treeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deskvfs_tree_nodes",
			Help: "Number of nodes in the live tree",
		},
	)

	hydrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskvfs_hydrations_total",
			Help: "Total hydrations by source (snapshot, seed)",
		},
		[]string{"source"},
	)

	// RPC metrics
	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskvfs_rpc_requests_total",
			Help: "Total number of RPC requests",
		},
		[]string{"method", "code"},
	)

	rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deskvfs_rpc_request_duration_seconds",
			Help:    "RPC request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTransaction records a committed or rolled back mutation.
func RecordTransaction(op string, success bool, duration time.Duration) {
	status := "committed"
	if !success {
		status = "rolled_back"
	}
	transactionsTotal.WithLabelValues(op, status).Inc()
	transactionDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetSnapshotBytes sets the size of the last written snapshot.
func SetSnapshotBytes(n int) {
	snapshotBytes.Set(float64(n))
}

// SetTreeSize sets the node count of the live tree.
func SetTreeSize(n int) {
	treeSize.Set(float64(n))
}

// RecordHydration records where the live tree came from.
func RecordHydration(source string) {
	hydrationsTotal.WithLabelValues(source).Inc()
}

// RecordRPC records an RPC call.
func RecordRPC(method, code string, duration time.Duration) {
	rpcRequestsTotal.WithLabelValues(method, code).Inc()
	rpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
