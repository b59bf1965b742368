package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	content := "Project,Date,Hours,Task Description\n" +
		"PRJ-1,01/15/2025,8,Integration work\n" +
		",,,\n" +
		"PRJ-2,01/16/2025,4, Review \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PRJ-1", rows[0]["Project"])
	assert.Equal(t, "8", rows[0]["Hours"])
	// Cells are trimmed, blank lines dropped.
	assert.Equal(t, "Review", rows[1]["Task Description"])
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.xlsx")
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Project", "B1": "Date", "C1": "Hours",
		"A2": "PRJ-9", "B2": "02/03/2025", "C2": "6",
	}
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue(sheetName, cell, value))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PRJ-9", rows[0]["Project"])
	assert.Equal(t, "02/03/2025", rows[0]["Date"])
	assert.Equal(t, "6", rows[0]["Hours"])
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("rows.txt")
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestLoadRaggedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "Project,Date,Hours\nPRJ-1,01/15/2025\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "01/15/2025", rows[0]["Date"])
	_, hasHours := rows[0]["Hours"]
	assert.False(t, hasHours)
}
