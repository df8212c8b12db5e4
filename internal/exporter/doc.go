// Package exporter renders variant comparison reports as CSV.
//
// Two concerns live here: the generic CSVWriter (headers, records,
// optional UTF-8 BOM for Excel) and the comparison-specific column
// layout. Exported files carry raw full-precision values with nulls as
// empty cells; the Format helpers produce the rounded display strings
// used in the human-facing table.
package exporter
