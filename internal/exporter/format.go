package exporter

import (
	"fmt"

	"pushpulse/internal/dataset"
)

// Display formatting for the human-facing table. Exported CSVs keep raw
// values; these apply only when rendering.

// FormatRate renders a rate as a percentage with 2 decimal places, or a
// dash when null.
func FormatRate(f dataset.Float) string {
	if !f.Valid {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", f.Value*100)
}

// FormatPValue renders a p-value with 4 decimal places, or a dash when
// the test was undefined.
func FormatPValue(f dataset.Float) string {
	if !f.Valid {
		return "—"
	}
	return fmt.Sprintf("%.4f", f.Value)
}

// FormatMargin renders a margin-of-victory percentage with 2 decimal
// places, or a dash when null.
func FormatMargin(f dataset.Float) string {
	if !f.Valid {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", f.Value)
}

// FormatSignificance renders a significance flag, or a dash when the
// underlying p-value was null.
func FormatSignificance(b *bool) string {
	if b == nil {
		return "—"
	}
	if *b {
		return "yes"
	}
	return "no"
}
