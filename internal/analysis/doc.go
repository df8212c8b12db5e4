// Package analysis implements the variant comparison pipeline: filtering
// by Day/Entity/Slot selections, multi-key grouping over a user-chosen
// column subset, and a per-group, per-platform Welch t-test of the PR
// variant's open rates against Social's.
//
// Group iteration is sorted by key tuple and platforms follow the
// caller's selection order, so a fixed input and fixed selections always
// produce the same report. Degenerate samples (empty after null-drop,
// fewer than two observations, zero variance) yield null p-values rather
// than errors; a (group, platform) pair missing either variant entirely
// is skipped, not zero-filled.
package analysis
