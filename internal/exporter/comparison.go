package exporter

import (
	"io"
	"strconv"

	"pushpulse/internal/analysis"
	"pushpulse/internal/dataset"
)

// comparisonColumns are the fixed (non-grouping) export columns, named
// to match the dashboard table.
var comparisonColumns = []string{
	"Platform",
	"PR_DOR",
	"Social_DOR",
	"PR_TOR",
	"Social_TOR",
	"DOR_pvalue",
	"TOR_pvalue",
	"DOR_Significant",
	"TOR_Significant",
	"Winner_Variant",
	"Margin_of_Victory (%)",
}

// ComparisonHeaders returns the CSV header row for a report grouped by
// the given columns.
func ComparisonHeaders(groupBy []analysis.GroupColumn) []string {
	headers := make([]string, 0, len(groupBy)+len(comparisonColumns))
	for _, col := range groupBy {
		headers = append(headers, string(col))
	}
	return append(headers, comparisonColumns...)
}

// ComparisonRecords renders the report rows with raw (full-precision)
// values. Null fields export as empty cells.
func ComparisonRecords(report *analysis.Report) [][]string {
	records := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		row := make([]string, 0, len(report.GroupBy)+len(comparisonColumns))
		row = append(row, res.Key...)
		row = append(row,
			string(res.Platform),
			rawFloat(res.PRDOR),
			rawFloat(res.SocialDOR),
			rawFloat(res.PRTOR),
			rawFloat(res.SocialTOR),
			rawFloat(res.DORPValue),
			rawFloat(res.TORPValue),
			rawBool(res.DORSignificant),
			rawBool(res.TORSignificant),
			string(res.Winner),
			rawFloat(res.Margin),
		)
		records = append(records, row)
	}
	return records
}

// WriteComparison streams a comparison report as CSV.
func WriteComparison(w io.Writer, report *analysis.Report) error {
	return Write(w, WriteOptions{
		Headers:   ComparisonHeaders(report.GroupBy),
		Records:   ComparisonRecords(report),
		BOMPrefix: true,
	})
}

func rawFloat(f dataset.Float) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

func rawBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
