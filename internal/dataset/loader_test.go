package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushpulse/internal/shared/testutil"
)

const sampleHeader = "Day,Entity,Slot,Variant," +
	"Direct Opens (Android Push),Total Opens (Android Push),Sends (Android Push)," +
	"Direct Opens (iOS Push),Total Opens (iOS Push),Sends (iOS Push)"

func sampleCSV(rows ...string) string {
	return sampleHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	logger, _ := testutil.NewLogger(t)
	return NewLoader(logger)
}

func TestLoadCSV(t *testing.T) {
	t.Run("parses rows and remaps variants", func(t *testing.T) {
		loader := newTestLoader(t)

		records, err := loader.LoadCSV(strings.NewReader(sampleCSV(
			"Mon,A,1,VAR1,40,50,100,10,12,50",
			"Mon,A,1,VAR2,30,45,100,8,9,50",
		)))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "Mon", records[0].Day)
		assert.Equal(t, "A", records[0].Entity)
		assert.Equal(t, "1", records[0].Slot)
		assert.Equal(t, VariantPR, records[0].Variant)
		assert.Equal(t, VariantSocial, records[1].Variant)
		assert.Equal(t, 40.0, records[0].Android.DirectOpens)
		assert.Equal(t, 50.0, records[0].Android.TotalOpens)
		assert.Equal(t, 100.0, records[0].Android.Sends)
		assert.Equal(t, 50.0, records[0].IOS.Sends)
	})

	t.Run("accepts already normalized variants", func(t *testing.T) {
		loader := newTestLoader(t)

		records, err := loader.LoadCSV(strings.NewReader(sampleCSV(
			"Mon,A,1,PR,40,50,100,10,12,50",
			"Mon,A,1,Social,30,45,100,8,9,50",
		)))
		require.NoError(t, err)
		assert.Equal(t, VariantPR, records[0].Variant)
		assert.Equal(t, VariantSocial, records[1].Variant)
	})

	t.Run("strips a leading byte order mark", func(t *testing.T) {
		loader := newTestLoader(t)

		records, err := loader.LoadCSV(strings.NewReader(
			"\uFEFF" + sampleCSV("Mon,A,1,VAR1,40,50,100,10,12,50"),
		))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Mon", records[0].Day)
	})

	t.Run("skips blank rows", func(t *testing.T) {
		loader := newTestLoader(t)

		records, err := loader.LoadCSV(strings.NewReader(sampleCSV(
			"Mon,A,1,VAR1,40,50,100,10,12,50",
			",,,,,,,,,",
		)))
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("empty input fails", func(t *testing.T) {
		loader := newTestLoader(t)

		_, err := loader.LoadCSV(strings.NewReader(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("malformed count fails with row number", func(t *testing.T) {
		loader := newTestLoader(t)

		_, err := loader.LoadCSV(strings.NewReader(sampleCSV(
			"Mon,A,1,VAR1,forty,50,100,10,12,50",
		)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
		assert.Contains(t, err.Error(), "forty")
	})

	t.Run("negative sends rejected", func(t *testing.T) {
		loader := newTestLoader(t)

		_, err := loader.LoadCSV(strings.NewReader(sampleCSV(
			"Mon,A,1,VAR1,40,50,-100,10,12,50",
		)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid record")
	})
}

func TestLoadCSVSeparatorDetection(t *testing.T) {
	tests := []struct {
		name string
		sep  string
	}{
		{"comma", ","},
		{"semicolon", ";"},
		{"tab", "\t"},
		{"pipe", "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(t)

			content := strings.ReplaceAll(sampleCSV("Mon,A,1,VAR1,40,50,100,10,12,50"), ",", tt.sep)
			records, err := loader.LoadCSV(strings.NewReader(content))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, VariantPR, records[0].Variant)
		})
	}
}

func TestLoadCSVHeaderNormalization(t *testing.T) {
	loader := newTestLoader(t)

	// Padded, case-shifted headers must still resolve.
	header := "  day , ENTITY ,Slot, Variant ," +
		"direct opens (android push), Total  Opens (Android Push) ,Sends (Android Push)," +
		"Direct Opens (iOS Push),Total Opens (iOS Push), sends (ios push) "
	content := header + "\nMon,A,1,VAR1,40,50,100,10,12,50\n"

	records, err := loader.LoadCSV(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 100.0, records[0].Android.Sends)
	assert.Equal(t, 50.0, records[0].IOS.Sends)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	loader := newTestLoader(t)

	header := "Day,Entity,Variant," +
		"Direct Opens (Android Push),Total Opens (Android Push),Sends (Android Push)," +
		"Direct Opens (iOS Push),Total Opens (iOS Push),Sends (iOS Push)"
	_, err := loader.LoadCSV(strings.NewReader(header + "\nMon,A,VAR1,40,50,100,10,12,50\n"))

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ColSlot, missing.Column)
	assert.Contains(t, err.Error(), `"Slot"`)
}

func TestDetectSeparator(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{"comma default", "a,b,c", ','},
		{"semicolon wins", "a;b;c;d", ';'},
		{"tab wins", "a\tb\tc", '\t'},
		{"comma wins ties", "a,b;c", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectSeparator(tt.header))
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		want    float64
		wantErr bool
	}{
		{"integer", "42", 42, false},
		{"decimal", "3.5", 3.5, false},
		{"thousands separator", "12,345", 12345, false},
		{"empty is zero", "", 0, false},
		{"garbage", "n/a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCount(tt.cell)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
