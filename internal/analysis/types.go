package analysis

import (
	"strings"

	"pushpulse/internal/dataset"
)

// DefaultAlpha is the significance threshold applied to every test.
const DefaultAlpha = 0.05

// GroupColumn names a grouping dimension of the report.
type GroupColumn string

const (
	GroupDay    GroupColumn = "Day"
	GroupEntity GroupColumn = "Entity"
	GroupSlot   GroupColumn = "Slot"
)

// GroupColumns lists every grouping dimension, in report order.
var GroupColumns = []GroupColumn{GroupDay, GroupEntity, GroupSlot}

// IsValid reports whether c names a known grouping dimension.
func (c GroupColumn) IsValid() bool {
	return c == GroupDay || c == GroupEntity || c == GroupSlot
}

// value extracts the record's value for this dimension.
func (c GroupColumn) value(r dataset.RateRecord) string {
	switch c {
	case GroupEntity:
		return r.Entity
	case GroupSlot:
		return r.Slot
	default:
		return r.Day
	}
}

// Filter restricts records to selected dimension values. A nil selection
// means "all observed values"; an empty non-nil selection is a valid
// choice that simply matches nothing.
type Filter struct {
	Days     []string `json:"days,omitempty"`
	Entities []string `json:"entities,omitempty"`
	Slots    []string `json:"slots,omitempty"`
}

// Apply returns the records whose Day, Entity and Slot all belong to the
// respective selections.
func (f Filter) Apply(records []dataset.RateRecord) []dataset.RateRecord {
	days := toSet(f.Days)
	entities := toSet(f.Entities)
	slots := toSet(f.Slots)

	out := make([]dataset.RateRecord, 0, len(records))
	for _, r := range records {
		if !matches(days, r.Day) || !matches(entities, r.Entity) || !matches(slots, r.Slot) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func matches(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}

// Request is one comparison run: grouping columns, platform selection
// and row filter, all supplied by the presentation layer as plain values.
type Request struct {
	GroupBy   []GroupColumn      `json:"group_by" validate:"dive,oneof=Day Entity Slot"`
	Platforms []dataset.Platform `json:"platforms" validate:"dive,oneof=Android iOS"`
	Filter    Filter             `json:"filter"`
}

// GroupKey is the value tuple a group shares over the chosen columns.
type GroupKey []string

// String joins the tuple for logging and map keys.
func (k GroupKey) String() string {
	return strings.Join(k, "\x1f")
}

// Winner labels the variant with the higher mean direct open rate.
type Winner string

const (
	WinnerPR     Winner = "PR"
	WinnerSocial Winner = "Social"
	WinnerTie    Winner = "Tie"
	WinnerNA     Winner = "N/A"
)

// ComparisonResult is the outcome for one (group, platform) pair.
// Null fields mean the underlying samples were missing or degenerate;
// they are surfaced as such rather than silently zero-filled.
type ComparisonResult struct {
	Key      GroupKey         `json:"key"`
	Platform dataset.Platform `json:"platform"`

	PRDOR     dataset.Float `json:"pr_dor"`
	SocialDOR dataset.Float `json:"social_dor"`
	PRTOR     dataset.Float `json:"pr_tor"`
	SocialTOR dataset.Float `json:"social_tor"`

	DORPValue dataset.Float `json:"dor_pvalue"`
	TORPValue dataset.Float `json:"tor_pvalue"`

	// Significance flags are nil when the matching p-value is null.
	DORSignificant *bool `json:"dor_significant"`
	TORSignificant *bool `json:"tor_significant"`

	Winner Winner        `json:"winner"`
	Margin dataset.Float `json:"margin_pct"`
}

// Report is the full comparison output for one request.
type Report struct {
	GroupBy   []GroupColumn      `json:"group_by"`
	Platforms []dataset.Platform `json:"platforms"`
	Results   []ComparisonResult `json:"results"`
}

// Summary is the overall open-rate overview for one platform across the
// filtered rows, with null-skipping means.
type Summary struct {
	Platform       dataset.Platform `json:"platform"`
	DirectOpenRate dataset.Float    `json:"direct_open_rate"`
	TotalOpenRate  dataset.Float    `json:"total_open_rate"`
	Records        int              `json:"records"`
}
