package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Canonical column names as they appear in the delivery report export.
// Matching is case-insensitive and whitespace-insensitive after trimming.
const (
	ColDay                = "Day"
	ColEntity             = "Entity"
	ColSlot               = "Slot"
	ColVariant            = "Variant"
	ColAndroidDirectOpens = "Direct Opens (Android Push)"
	ColAndroidTotalOpens  = "Total Opens (Android Push)"
	ColAndroidSends       = "Sends (Android Push)"
	ColIOSDirectOpens     = "Direct Opens (iOS Push)"
	ColIOSTotalOpens      = "Total Opens (iOS Push)"
	ColIOSSends           = "Sends (iOS Push)"
)

// requiredColumns lists every column a report must carry, in schema order.
var requiredColumns = []string{
	ColDay, ColEntity, ColSlot, ColVariant,
	ColAndroidDirectOpens, ColAndroidTotalOpens, ColAndroidSends,
	ColIOSDirectOpens, ColIOSTotalOpens, ColIOSSends,
}

// variantAliases maps raw report variant codes to their normalized form.
var variantAliases = map[string]Variant{
	"VAR1":   VariantPR,
	"VAR2":   VariantSocial,
	"PR":     VariantPR,
	"Social": VariantSocial,
}

// MissingColumnError reports a required report column that was not found
// in the header row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in report header", e.Column)
}

// Loader parses delivery report files into validated Records.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger.With(slog.String("component", "loader")),
		validate: validator.New(),
	}
}

// LoadFile reads a delivery report from disk, dispatching on the file
// extension: .xlsx via excelize, anything else as delimited text.
func (l *Loader) LoadFile(path string) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return l.LoadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	records, err := l.LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// LoadCSV reads a delimited report. The separator is auto-detected from
// the header line, matching the flexible-separator behavior of the
// report exports seen in the field (comma, semicolon, tab or pipe).
func (l *Loader) LoadCSV(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Excel CSV exports lead with a UTF-8 BOM; left in place it glues
	// onto the first column name and fails the header lookup.
	header = strings.TrimPrefix(header, "\uFEFF")
	if strings.TrimSpace(header) == "" {
		return nil, fmt.Errorf("report is empty")
	}

	sep := detectSeparator(header)
	l.logger.Debug("detected report separator", slog.String("separator", string(sep)))

	reader := csv.NewReader(io.MultiReader(strings.NewReader(header), br))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return l.fromRows(rows)
}

// detectSeparator picks the candidate delimiter occurring most often in
// the header line. Comma wins ties, matching its position as the default.
func detectSeparator(header string) rune {
	best := ','
	bestCount := strings.Count(header, ",")
	for _, cand := range []rune{';', '\t', '|'} {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// normalizeHeader collapses internal whitespace, trims, and lowercases a
// column name so lookups survive the ragged headers real exports carry.
func normalizeHeader(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// fromRows converts raw report rows (header first) into Records. It is
// shared by the CSV and XLSX paths.
func (l *Loader) fromRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("report is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[normalizeHeader(name)] = i
	}
	columns := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		pos, ok := index[normalizeHeader(name)]
		if !ok {
			return nil, &MissingColumnError{Column: name}
		}
		columns[name] = pos
	}

	records := make([]Record, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		cell := func(col string) string {
			pos := columns[col]
			if pos >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[pos])
		}

		rec := Record{
			Day:     cell(ColDay),
			Entity:  cell(ColEntity),
			Slot:    cell(ColSlot),
			Variant: normalizeVariant(cell(ColVariant)),
		}

		var err error
		if rec.Android, err = parseCounts(cell(ColAndroidDirectOpens), cell(ColAndroidTotalOpens), cell(ColAndroidSends)); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum+2, err)
		}
		if rec.IOS, err = parseCounts(cell(ColIOSDirectOpens), cell(ColIOSTotalOpens), cell(ColIOSSends)); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum+2, err)
		}

		if err := l.validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("row %d: invalid record: %w", rowNum+2, err)
		}
		records = append(records, rec)
	}

	l.logger.Info("loaded delivery report",
		slog.Int("rows", len(records)),
		slog.Int("columns", len(columns)),
	)
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func normalizeVariant(raw string) Variant {
	if v, ok := variantAliases[raw]; ok {
		return v
	}
	return Variant(raw)
}

func parseCounts(direct, total, sends string) (Counts, error) {
	var c Counts
	var err error
	if c.DirectOpens, err = parseCount(direct); err != nil {
		return c, fmt.Errorf("direct opens: %w", err)
	}
	if c.TotalOpens, err = parseCount(total); err != nil {
		return c, fmt.Errorf("total opens: %w", err)
	}
	if c.Sends, err = parseCount(sends); err != nil {
		return c, fmt.Errorf("sends: %w", err)
	}
	return c, nil
}

// parseCount treats an empty cell as zero; anything else must parse as a
// number.
func parseCount(cell string) (float64, error) {
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed count %q", cell)
	}
	return v, nil
}
