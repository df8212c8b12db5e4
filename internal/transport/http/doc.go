// Package http contains the chi HTTP handlers for the dashboard API:
// dataset upload and inspection, overview summaries, the variant
// comparison table, and its CSV export. Errors render as RFC 7807
// problem documents via the shared ErrorHandler.
package http
