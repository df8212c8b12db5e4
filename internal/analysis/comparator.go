package analysis

import (
	"context"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"pushpulse/internal/dataset"
)

// Analyzer groups rate records by a user-chosen key set and tests the PR
// variant against Social per group and platform.
type Analyzer struct {
	alpha  float64
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer using the default significance level.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		alpha:  DefaultAlpha,
		logger: logger.With(slog.String("component", "analyzer")),
	}
}

// Compare runs the full comparison for one request. With no grouping
// columns selected it returns an empty report; that is the "no results
// yet" state, not an error. A well-formed dataset never makes Compare
// fail: degenerate groups yield null test fields instead.
func (a *Analyzer) Compare(ctx context.Context, records []dataset.RateRecord, req Request) *Report {
	report := &Report{GroupBy: req.GroupBy, Platforms: req.Platforms}
	if len(req.GroupBy) == 0 {
		return report
	}

	filtered := req.Filter.Apply(records)
	groups, keys := groupBy(filtered, req.GroupBy)

	a.logger.InfoContext(ctx, "running variant comparison",
		slog.Int("rows", len(filtered)),
		slog.Int("groups", len(keys)),
		slog.Any("group_by", req.GroupBy),
	)

	for _, key := range keys {
		members := groups[key]
		for _, platform := range req.Platforms {
			if res, ok := a.compareGroup(members, platform); ok {
				res.Key = splitKey(key, len(req.GroupBy))
				report.Results = append(report.Results, res)
			}
		}
	}
	return report
}

// groupBy partitions records by their value tuple over the chosen
// columns. Keys come back sorted component-wise so iteration order is
// deterministic for a fixed input.
func groupBy(records []dataset.RateRecord, columns []GroupColumn) (map[string][]dataset.RateRecord, []string) {
	groups := make(map[string][]dataset.RateRecord)
	var keys []string
	for _, r := range records {
		tuple := make(GroupKey, len(columns))
		for i, col := range columns {
			tuple[i] = col.value(r)
		}
		key := tuple.String()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], r)
	}
	sort.Strings(keys)
	return groups, keys
}

func splitKey(key string, parts int) GroupKey {
	tuple := make(GroupKey, 0, parts)
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '\x1f' {
			tuple = append(tuple, key[start:i])
			start = i + 1
		}
	}
	return append(tuple, key[start:])
}

// compareGroup produces the ComparisonResult for one group on one
// platform. ok is false when either variant partition is empty; such
// pairs are skipped entirely rather than emitted zero-filled.
func (a *Analyzer) compareGroup(members []dataset.RateRecord, platform dataset.Platform) (ComparisonResult, bool) {
	var pr, social []dataset.RateRecord
	for _, r := range members {
		switch r.Variant {
		case dataset.VariantPR:
			pr = append(pr, r)
		case dataset.VariantSocial:
			social = append(social, r)
		}
	}
	if len(pr) == 0 || len(social) == 0 {
		return ComparisonResult{}, false
	}

	prDOR := validRates(pr, platform, dataset.RateRecord.DirectOpenRate)
	socialDOR := validRates(social, platform, dataset.RateRecord.DirectOpenRate)
	prTOR := validRates(pr, platform, dataset.RateRecord.TotalOpenRate)
	socialTOR := validRates(social, platform, dataset.RateRecord.TotalOpenRate)

	res := ComparisonResult{
		Platform:  platform,
		PRDOR:     meanOf(prDOR),
		SocialDOR: meanOf(socialDOR),
		PRTOR:     meanOf(prTOR),
		SocialTOR: meanOf(socialTOR),
	}
	res.DORPValue, res.DORSignificant = a.test(prDOR, socialDOR)
	res.TORPValue, res.TORSignificant = a.test(prTOR, socialTOR)
	res.Winner, res.Margin = verdict(res.PRDOR, res.SocialDOR)
	return res, true
}

// validRates collects the non-null rate values in one column.
func validRates(records []dataset.RateRecord, platform dataset.Platform, col func(dataset.RateRecord, dataset.Platform) dataset.Float) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v := col(r, platform); v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

func meanOf(values []float64) dataset.Float {
	if len(values) == 0 {
		return dataset.Float{}
	}
	return dataset.FloatFrom(stat.Mean(values, nil))
}

func (a *Analyzer) test(pr, social []float64) (dataset.Float, *bool) {
	res, ok := welchTTest(pr, social)
	if !ok {
		return dataset.Float{}, nil
	}
	significant := res.P < a.alpha
	return dataset.FloatFrom(res.P), &significant
}

// verdict determines the winner and margin of victory from the direct
// open rate means only. Total open rate feeds the significance test but
// not the verdict; that asymmetry is deliberate.
func verdict(prDOR, socialDOR dataset.Float) (Winner, dataset.Float) {
	if !prDOR.Valid || !socialDOR.Valid {
		return WinnerNA, dataset.Float{}
	}

	var winner Winner
	switch {
	case prDOR.Value > socialDOR.Value:
		winner = WinnerPR
	case prDOR.Value < socialDOR.Value:
		winner = WinnerSocial
	default:
		winner = WinnerTie
	}

	if socialDOR.Value == 0 {
		return winner, dataset.Float{}
	}
	margin := (prDOR.Value - socialDOR.Value) / socialDOR.Value * 100
	return winner, dataset.FloatFrom(margin)
}

// Summarize computes the overview means per selected platform across the
// given rows, skipping null rates.
func Summarize(records []dataset.RateRecord, platforms []dataset.Platform) []Summary {
	out := make([]Summary, 0, len(platforms))
	for _, platform := range platforms {
		dor := validRates(records, platform, dataset.RateRecord.DirectOpenRate)
		tor := validRates(records, platform, dataset.RateRecord.TotalOpenRate)
		out = append(out, Summary{
			Platform:       platform,
			DirectOpenRate: meanOf(dor),
			TotalOpenRate:  meanOf(tor),
			Records:        len(records),
		})
	}
	return out
}
