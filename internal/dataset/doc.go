// Package dataset loads push-notification delivery reports and derives
// per-record open rates.
//
// A report is a delimited text or Excel export carrying one row per
// Day/Entity/Slot/Variant combination, with Android and iOS counters for
// direct opens, total opens and sends. The loader auto-detects the
// delimiter, matches columns case- and whitespace-insensitively, remaps
// the raw variant codes (VAR1 becomes PR, VAR2 becomes Social) and
// validates every row against the fixed schema, failing fast with a
// MissingColumnError when a required column is absent.
//
// ComputeRates then derives the direct and total open rates per platform.
// Rates are carried as nullable Floats: a row with zero sends yields a
// null rate instead of NaN or infinity, so later aggregation can skip
// missing data explicitly.
package dataset
