package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"costsync/internal"
)

func mkXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf := bytes.NewBuffer(nil)
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSXTypedCells(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"ISBN", "Titulo", "PVP"},
		{9788437604947, "Cien años", 19.5},
		{"84-376-0494", "Rayuela", "12,90"},
	})
	grid, err := ReadXLSX(blob, "")
	require.NoError(t, err)
	require.Len(t, grid, 3)

	assert.Equal(t, 9788437604947.0, grid[1][0])
	assert.Equal(t, "Cien años", grid[1][1])
	assert.Equal(t, 19.5, grid[1][2])
	assert.Equal(t, "84-376-0494", grid[2][0])
	assert.Equal(t, "12,90", grid[2][2])
}

func TestReadXLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"ISBN", "ALTA", "PVP"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"555", 46296, 12.5}))

	dayFirst := "dd/mm/yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dayFirst})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B2", dateStyle))
	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", "C2", priceStyle))

	buf := bytes.NewBuffer(nil)
	_, err = f.WriteTo(buf)
	require.NoError(t, err)

	grid, err := ReadXLSX(buf.Bytes(), "")
	require.NoError(t, err)
	got, ok := grid[1][1].(time.Time)
	require.True(t, ok, "date cell read as %T", grid[1][1])
	assert.True(t, got.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)), "got %s", got)
	assert.Equal(t, 12.5, grid[1][2])
}

func TestIsDateFormatCode(t *testing.T) {
	for code, want := range map[string]bool{
		"mmm-yy":            true,
		"dd/mm/yyyy hh:mm":  true,
		"[$-409]d-mmm-yyyy": true,
		"[h]:mm:ss":         true,
		"General":           false,
		"#,##0.00":          false,
		`#,##0.00 "USD"`:    false,
		"[Red]0.00":         false,
		`0.00\d`:            false,
	} {
		assert.Equal(t, want, isDateFormatCode(code), code)
	}
}

func TestReadXLSXUnknownSheet(t *testing.T) {
	blob := mkXLSX(t, [][]any{{"a"}})
	_, err := ReadXLSX(blob, "Precios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Precios")
}

func TestGridTableHeaderOffset(t *testing.T) {
	grid := Grid{
		{"Distribuidora del Sur"},
		{"Lista de precios octubre"},
		{"Código", "Descripción", nil, "Precio", "Precio"},
		{"555", "Libro A", nil, 100.0, 90.0},
		{nil, nil},
		{"556", "Libro B", "x", 50.0},
	}
	ds, err := grid.Table("sur", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Código", "Descripción", "Unnamed: 2", "Precio", "Precio.1"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, internal.Row{"Código": "555", "Descripción": "Libro A", "Unnamed: 2": nil, "Precio": 100.0, "Precio.1": 90.0}, ds.Rows[0])
	assert.Nil(t, ds.Rows[1]["Precio.1"])
}

func TestGridTableRejectsHeaderOutOfRange(t *testing.T) {
	_, err := Grid{{"a"}}.Table("x", 2)
	require.Error(t, err)
	_, err = Grid{{"a"}}.Table("x", 0)
	require.Error(t, err)
}

func TestGridPreview(t *testing.T) {
	grid := Grid{{"a", 1.0}, {"b"}, {"c"}}
	assert.Equal(t, [][]string{{"a", "1"}, {"b", ""}}, grid.Preview(2))
	assert.Len(t, grid.Preview(0), 3)
}

func TestReadHTMLTable(t *testing.T) {
	html := `<p>Tarifa</p><table><tr><th>Ref</th><th>Precio</th></tr><tr><td> 12-345 </td><td>10,5</td></tr></table>`
	grid, err := ReadHTMLTable(html)
	require.NoError(t, err)

	ds, err := grid.Table("web", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ref", "Precio"}, ds.Columns)
	assert.Equal(t, "12-345", ds.Rows[0]["Ref"])
	assert.Equal(t, "10,5", ds.Rows[0]["Precio"])
}

func TestReadHTMLTableWithoutTable(t *testing.T) {
	_, err := ReadHTMLTable("<p>nada</p>")
	require.Error(t, err)
}

func mkEmail(t *testing.T, attachments map[string][]byte) []byte {
	t.Helper()
	b := enmime.Builder().
		From("Proveedor", "ventas@example.com").
		To("Compras", "compras@example.com").
		Subject("Lista de precios").
		Text([]byte("Adjuntamos la lista actualizada."))
	for name, content := range attachments {
		b = b.AddAttachment(content, "application/octet-stream", name)
	}
	part, err := b.Build()
	require.NoError(t, err)
	buf := bytes.NewBuffer(nil)
	require.NoError(t, part.Encode(buf))
	return buf.Bytes()
}

func TestReadEmailAttachment(t *testing.T) {
	blob := mkXLSX(t, [][]any{{"ISBN", "PVP"}, {"555", 100}})
	raw := mkEmail(t, map[string][]byte{"lista.xlsx": blob})

	grid, err := ReadEmail(raw, "")
	require.NoError(t, err)
	ds, err := grid.Table("mail", 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, ds.Rows[0]["PVP"])

	_, err = ReadEmail(raw, "otra.xlsx")
	require.Error(t, err)
}

func TestReadEmailWithoutPriceList(t *testing.T) {
	_, err := ReadEmail(mkEmail(t, nil), "")
	require.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	format, err := FormatOf("a/b/Lista.XLSX")
	require.NoError(t, err)
	assert.Equal(t, internal.FormatXLSX, format)

	_, err = FormatOf("viejo.xls")
	require.Error(t, err)
	_, err = FormatOf("datos.csv")
	require.Error(t, err)
}

func TestLoadDetectsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lista.xlsx")
	blob := mkXLSX(t, [][]any{
		{"Editorial Norte"},
		{nil},
		{"ISBN", "Titulo", "Precio"},
		{"555", "A", 10},
	})
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	ds, err := Load(internal.TableRef{Path: path}, "", 20)
	require.NoError(t, err)
	assert.Equal(t, "lista.xlsx", ds.Name)
	assert.Equal(t, []string{"ISBN", "Titulo", "Precio"}, ds.Columns)
	assert.Len(t, ds.Rows, 1)
}
