// Package metrics exposes the gateway's Prometheus metrics:
//
//	zkrest_operations_total{op,status}      operations by outcome (ok|error|fault)
//	zkrest_operations_duration_seconds{op}  time spent per operation
//	zkrest_tree_nodes                       descendants per tree request
//	zkrest_http_faults_total                requests answered with 500
//
// plus the standard Go runtime and process collectors. Handler() is mounted
// at /metrics by the server when metrics are enabled.
package metrics
