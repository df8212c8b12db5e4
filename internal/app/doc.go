// Package app wires the dashboard server together: configuration,
// logging, Prometheus metrics, the analysis service and the chi router,
// plus graceful startup and shutdown.
package app
