// Package services holds the application service layer between the HTTP
// transport and the dataset/analysis packages. AnalysisService owns the
// single shared dataset and re-runs the full pipeline synchronously on
// every request; input sizes are report-scale, so there is no caching or
// incremental recomputation.
package services
