package xlgrid

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAddSheetDuplicateFailsFast(t *testing.T) {
	b := New()
	defer b.Close()

	_, err := b.AddSheet("Summary")
	require.NoError(t, err)

	_, err = b.AddSheet("Summary")
	assert.ErrorIs(t, err, ErrDuplicateSheet)
}

func TestAddSheetSanitizedCollision(t *testing.T) {
	b := New()
	defer b.Close()

	_, err := b.AddSheet("P/L")
	require.NoError(t, err)

	// sanitizes to the same name
	_, err = b.AddSheet("P:L")
	assert.ErrorIs(t, err, ErrDuplicateSheet)
}

func TestFinalizeTwice(t *testing.T) {
	b := New()
	defer b.Close()
	sh, err := b.AddSheet("Data")
	require.NoError(t, err)
	sh.Write("x")

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))

	var again bytes.Buffer
	assert.ErrorIs(t, b.Write(&again), ErrFinalized)

	_, err = b.AddSheet("Late")
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestSaveAsAppendsExtension(t *testing.T) {
	b := New()
	defer b.Close()
	sh, err := b.AddSheet("Data")
	require.NoError(t, err)
	sh.Write("x")

	path, err := b.SaveAs(filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	out, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer out.Close()
	got, err := out.GetCellValue("Data", "A1")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestSaveAsRemovesPartialFileOnError(t *testing.T) {
	b := New()
	defer b.Close()
	sh, err := b.AddSheet("Data")
	require.NoError(t, err)
	sh.WriteCell(Span("a", 2, 2)).Newline()
	sh.WriteCell(Span("b", 2, 1)) // layout violation, surfaces at finalize

	path := filepath.Join(t.TempDir(), "broken.xlsx")
	_, err = b.SaveAs(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLayout)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial file left behind")
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "out.xlsx", NormalizePath("out"))
	assert.Equal(t, "out.xlsx", NormalizePath("./out"))
	assert.Equal(t, "out.xlsx", NormalizePath("out.xlsx"))
	assert.Equal(t, "out.XLSX", NormalizePath("out.XLSX"))
	assert.Equal(t, "report.csv.xlsx", NormalizePath("report.csv"))
}

func TestSafeSheetName(t *testing.T) {
	assert.Equal(t, "P_L 2026", SafeSheetName("P/L 2026"))
	assert.Equal(t, "a_b_c_d_e_f_g", SafeSheetName(`a\b:c*d?e[f]g`))

	long := SafeSheetName("this sheet name is far longer than the workbook allows")
	assert.Len(t, []rune(long), 31)
}

func TestCloseIdempotent(t *testing.T) {
	b := New()
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}

func TestFirstSheetNamedDefault(t *testing.T) {
	b := New()
	defer b.Close()
	sh, err := b.AddSheet("Sheet1")
	require.NoError(t, err)
	sh.Write("v")

	out := roundTrip(t, b)
	got, err := out.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
