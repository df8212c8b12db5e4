package exporter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushpulse/internal/analysis"
	"pushpulse/internal/dataset"
	"pushpulse/internal/shared/testutil"
)

func buildReport(t *testing.T) *analysis.Report {
	t.Helper()
	logger, _ := testutil.NewLogger(t)
	analyzer := analysis.NewAnalyzer(logger)

	records := dataset.ComputeRates([]dataset.Record{
		{Day: "Mon", Entity: "A", Slot: "1", Variant: dataset.VariantPR,
			Android: dataset.Counts{DirectOpens: 40, TotalOpens: 50, Sends: 100}},
		{Day: "Mon", Entity: "A", Slot: "1", Variant: dataset.VariantSocial,
			Android: dataset.Counts{DirectOpens: 30, TotalOpens: 45, Sends: 100}},
	})
	return analyzer.Compare(context.Background(), records, analysis.Request{
		GroupBy:   []analysis.GroupColumn{analysis.GroupDay, analysis.GroupEntity},
		Platforms: []dataset.Platform{dataset.PlatformAndroid},
	})
}

func TestComparisonHeaders(t *testing.T) {
	headers := ComparisonHeaders([]analysis.GroupColumn{analysis.GroupDay, analysis.GroupSlot})
	assert.Equal(t, []string{
		"Day", "Slot", "Platform",
		"PR_DOR", "Social_DOR", "PR_TOR", "Social_TOR",
		"DOR_pvalue", "TOR_pvalue", "DOR_Significant", "TOR_Significant",
		"Winner_Variant", "Margin_of_Victory (%)",
	}, headers)
}

func TestWriteComparison(t *testing.T) {
	report := buildReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, report))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(string(out[3:])), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Day,Entity,Platform"))

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 13)
	assert.Equal(t, "Mon", fields[0])
	assert.Equal(t, "A", fields[1])
	assert.Equal(t, "Android", fields[2])
	assert.Equal(t, "0.4", fields[3])
	assert.Equal(t, "0.3", fields[4])
	// Undefined p-values and significance flags export as empty cells.
	assert.Equal(t, "", fields[7])
	assert.Equal(t, "", fields[8])
	assert.Equal(t, "", fields[9])
	assert.Equal(t, "", fields[10])
	assert.Equal(t, "PR", fields[11])
}

func TestWriteComparisonDeterministic(t *testing.T) {
	report := buildReport(t)

	var a, b bytes.Buffer
	require.NoError(t, WriteComparison(&a, report))
	require.NoError(t, WriteComparison(&b, report))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"rate", FormatRate(dataset.FloatFrom(0.4)), "40.00%"},
		{"rate null", FormatRate(dataset.Float{}), "—"},
		{"pvalue", FormatPValue(dataset.FloatFrom(0.034567)), "0.0346"},
		{"pvalue null", FormatPValue(dataset.Float{}), "—"},
		{"margin", FormatMargin(dataset.FloatFrom(33.333333)), "33.33%"},
		{"margin null", FormatMargin(dataset.Float{}), "—"},
		{"significance nil", FormatSignificance(nil), "—"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	yes, no := true, false
	assert.Equal(t, "yes", FormatSignificance(&yes))
	assert.Equal(t, "no", FormatSignificance(&no))
}
