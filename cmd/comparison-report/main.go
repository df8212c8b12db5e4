// Command comparison-report runs the variant comparison pipeline once
// over a delivery report file and writes the result as CSV, with a
// formatted table on stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"pushpulse/internal/analysis"
	"pushpulse/internal/dataset"
	"pushpulse/internal/exporter"
)

func main() {
	input := flag.String("input", "", "delivery report file (.csv or .xlsx)")
	output := flag.String("out", "variant_comparison.csv", "output CSV path")
	groupBy := flag.String("group", "Day,Entity", "comma-separated grouping columns (Day, Entity, Slot)")
	platforms := flag.String("platforms", "Android,iOS", "comma-separated platforms")
	quiet := flag.Bool("quiet", false, "suppress the formatted table")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *input == "" {
		slog.Error("missing required -input flag")
		flag.Usage()
		os.Exit(1)
	}

	req, err := buildRequest(*groupBy, *platforms)
	if err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	loader := dataset.NewLoader(logger)
	records, err := loader.LoadFile(*input)
	if err != nil {
		slog.Error("failed to load report", "path", *input, "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		slog.Error("report contains no data rows", "path", *input)
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(logger)
	report := analyzer.Compare(context.Background(), dataset.ComputeRates(records), req)

	writer := exporter.NewCSVWriter("", logger)
	if err := writer.WriteFile(*output, exporter.WriteOptions{
		Headers:   exporter.ComparisonHeaders(report.GroupBy),
		Records:   exporter.ComparisonRecords(report),
		BOMPrefix: true,
	}); err != nil {
		slog.Error("failed to write comparison CSV", "path", *output, "error", err)
		os.Exit(1)
	}

	slog.Info("comparison report written",
		"path", *output,
		"rows", len(report.Results),
		"groups", *groupBy,
	)

	if !*quiet {
		printTable(report)
	}
}

func buildRequest(groupBy, platforms string) (analysis.Request, error) {
	var req analysis.Request
	for _, raw := range strings.Split(groupBy, ",") {
		col := analysis.GroupColumn(strings.TrimSpace(raw))
		if col == "" {
			continue
		}
		if !col.IsValid() {
			return req, fmt.Errorf("unknown grouping column %q", raw)
		}
		req.GroupBy = append(req.GroupBy, col)
	}
	for _, raw := range strings.Split(platforms, ",") {
		p := dataset.Platform(strings.TrimSpace(raw))
		if p == "" {
			continue
		}
		if !p.IsValid() {
			return req, fmt.Errorf("unknown platform %q", raw)
		}
		req.Platforms = append(req.Platforms, p)
	}
	return req, nil
}

// printTable renders the report with display formatting: percentages to
// 2 decimal places, p-values to 4.
func printTable(report *analysis.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	headers := make([]string, 0, len(report.GroupBy)+8)
	for _, col := range report.GroupBy {
		headers = append(headers, string(col))
	}
	headers = append(headers, "Platform", "PR DOR", "Social DOR", "DOR p", "TOR p", "Sig", "Winner", "Margin")
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, res := range report.Results {
		row := make([]string, 0, len(headers))
		row = append(row, res.Key...)
		row = append(row,
			string(res.Platform),
			exporter.FormatRate(res.PRDOR),
			exporter.FormatRate(res.SocialDOR),
			exporter.FormatPValue(res.DORPValue),
			exporter.FormatPValue(res.TORPValue),
			exporter.FormatSignificance(res.DORSignificant),
			string(res.Winner),
			exporter.FormatMargin(res.Margin),
		)
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}
