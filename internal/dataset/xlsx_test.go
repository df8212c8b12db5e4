package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleColumns = []interface{}{
	ColDay, ColEntity, ColSlot, ColVariant,
	ColAndroidDirectOpens, ColAndroidTotalOpens, ColAndroidSends,
	ColIOSDirectOpens, ColIOSTotalOpens, ColIOSSends,
}

// writeSampleSheet fills sheet with the report header and two variant rows.
func writeSampleSheet(t *testing.T, f *excelize.File, sheet string) {
	t.Helper()
	require.NoError(t, f.SetSheetRow(sheet, "A1", &sampleColumns))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"Mon", "A", "1", "VAR1", 40, 50, 100, 10, 12, 50,
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"Mon", "A", "1", "VAR2", 30, 45, 100, 8, 9, 50,
	}))
}

func saveWorkbook(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	t.Run("parses rows and remaps variants", func(t *testing.T) {
		f := excelize.NewFile()
		writeSampleSheet(t, f, f.GetSheetName(0))
		path := saveWorkbook(t, f)

		loader := newTestLoader(t)
		records, err := loader.LoadXLSX(path)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "Mon", records[0].Day)
		assert.Equal(t, VariantPR, records[0].Variant)
		assert.Equal(t, VariantSocial, records[1].Variant)
		assert.Equal(t, 40.0, records[0].Android.DirectOpens)
		assert.Equal(t, 100.0, records[0].Android.Sends)
		assert.Equal(t, 50.0, records[1].IOS.Sends)
	})

	t.Run("skips a cover sheet ahead of the data", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Summary"))
		require.NoError(t, f.SetCellValue("Summary", "A1", "Push campaign report, week 12"))
		_, err := f.NewSheet("Data")
		require.NoError(t, err)
		writeSampleSheet(t, f, "Data")
		path := saveWorkbook(t, f)

		loader := newTestLoader(t)
		records, err := loader.LoadXLSX(path)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("reports the missing column when no sheet matches", func(t *testing.T) {
		f := excelize.NewFile()
		broken := make([]interface{}, len(sampleColumns))
		copy(broken, sampleColumns)
		broken[2] = "Window" // in place of Slot
		require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &broken))
		require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A2", &[]interface{}{
			"Mon", "A", "1", "VAR1", 40, 50, 100, 10, 12, 50,
		}))
		path := saveWorkbook(t, f)

		loader := newTestLoader(t)
		_, err := loader.LoadXLSX(path)
		var missing *MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, ColSlot, missing.Column)
	})

	t.Run("loads from a stream", func(t *testing.T) {
		f := excelize.NewFile()
		writeSampleSheet(t, f, f.GetSheetName(0))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		loader := newTestLoader(t)
		records, err := loader.LoadXLSXReader(buf)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, VariantPR, records[0].Variant)
	})
}
