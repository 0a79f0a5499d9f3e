package sheet

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"

	"costsync/internal"
	"costsync/internal/util"
)

// Grid holds the raw cells of one table before a header row is chosen.
type Grid [][]any

var reSpaces = regexp.MustCompile(`\s+`)

// FormatOf picks the reader for a file by its extension.
func FormatOf(path string) (internal.InputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return internal.FormatXLSX, nil
	case ".html", ".htm":
		return internal.FormatHTML, nil
	case ".eml":
		return internal.FormatEmail, nil
	case ".xls":
		return "", fmt.Errorf("%s: legacy .xls workbooks are not supported, save it as .xlsx", path)
	default:
		return "", fmt.Errorf("%s: unsupported input type", path)
	}
}

// LoadGrid reads the table referenced by ref.
func LoadGrid(ref internal.TableRef) (Grid, error) {
	format, err := FormatOf(ref.Path)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, err
	}

	var grid Grid
	switch format {
	case internal.FormatXLSX:
		grid, err = ReadXLSX(blob, ref.Sheet)
	case internal.FormatHTML:
		grid, err = ReadHTMLTable(string(blob))
	case internal.FormatEmail:
		grid, err = ReadEmail(blob, ref.Attachment)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.Path, err)
	}
	return grid, nil
}

// Load reads ref and turns it into a dataset. A HeaderRow of 0 asks for
// the header row to be detected.
func Load(ref internal.TableRef, name string, scanRows int) (internal.Dataset, error) {
	grid, err := LoadGrid(ref)
	if err != nil {
		return internal.Dataset{}, err
	}
	if name == "" {
		name = filepath.Base(ref.Path)
	}
	header := ref.HeaderRow
	if header == 0 {
		header = DetectHeaderRow(grid, scanRows)
		if header == 0 {
			header = 1
		}
	}
	return grid.Table(name, header)
}

// ReadXLSX returns the cells of sheetName, or of the first sheet when
// sheetName is empty. Numeric cells come back as float64.
func ReadXLSX(content []byte, sheetName string) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	cr := newCellReader(f, sheetName)
	grid := make(Grid, 0, len(rows))
	for r, row := range rows {
		cells := make([]any, len(row))
		for c, raw := range row {
			cells[c] = cr.typed(c+1, r+1, raw)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// cellReader types raw cell values, remembering which styles carry a date
// number format.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	cr := &cellReader{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cr.date1904 = *props.Date1904
	}
	return cr
}

// typed returns numeric cells as float64, date cells as time.Time, booleans
// as bool and everything else as the raw string.
func (cr *cellReader) typed(col, row int, raw string) any {
	if raw == "" {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := cr.f.GetCellType(cr.sheet, cell)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if typ == excelize.CellTypeDate {
				if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
					return t
				}
			}
			return raw
		}
		if typ == excelize.CellTypeDate || cr.isDate(cell) {
			if t, err := excelize.ExcelDateToTime(parsed, cr.date1904); err == nil {
				return t
			}
		}
		return parsed
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	}
	return raw
}

func (cr *cellReader) isDate(cell string) bool {
	idx, err := cr.f.GetCellStyle(cr.sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if known, ok := cr.dateStyles[idx]; ok {
		return known
	}
	isDate := false
	if style, err := cr.f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	cr.dateStyles[idx] = isDate
	return isDate
}

// isBuiltInDateFormat reports whether id is one of the predefined date or
// time number formats, including the East Asian ones.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

var reFormatLiterals = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)

// isDateFormatCode reports whether a custom number format such as "mmm-yy"
// or "dd/mm/yyyy hh:mm" renders a date or time.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(reFormatLiterals.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "ymdhs")
}

// ReadHTMLTable returns the cells of the first <table> of an HTML page.
func ReadHTMLTable(html string) (Grid, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no <table> found")
	}

	grid := Grid{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []any{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			text := normalizeSpaces(cell.Text())
			if text == "" {
				cells = append(cells, nil)
				return
			}
			cells = append(cells, text)
		})
		grid = append(grid, cells)
	})
	return grid, nil
}

// ReadEmail extracts the price list from a saved message: the attachment
// named attachment, else the first spreadsheet or HTML attachment, else a
// table in the HTML body.
func ReadEmail(raw []byte, attachment string) (Grid, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, part := range parts {
		filename := strings.TrimSpace(part.FileName)
		if attachment != "" && !strings.EqualFold(filename, attachment) {
			continue
		}
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".xlsx", ".xlsm":
			return ReadXLSX(part.Content, "")
		case ".html", ".htm":
			return ReadHTMLTable(string(part.Content))
		}
		if attachment != "" {
			return nil, fmt.Errorf("attachment %q is not a spreadsheet or HTML table", filename)
		}
	}

	if attachment != "" {
		return nil, fmt.Errorf("attachment %q not found", attachment)
	}
	if strings.Contains(strings.ToLower(env.HTML), "<table") {
		return ReadHTMLTable(env.HTML)
	}
	return nil, fmt.Errorf("message %q carries no price list", env.GetHeader("Subject"))
}

// Table builds a dataset using the 1-based headerRow as column titles.
// Rows above it are dropped, as are blank rows below it.
func (g Grid) Table(name string, headerRow int) (internal.Dataset, error) {
	if headerRow < 1 || headerRow > len(g) {
		return internal.Dataset{}, fmt.Errorf("%s: header row %d is outside 1..%d", name, headerRow, len(g))
	}

	width := 0
	for _, row := range g[headerRow-1:] {
		if len(row) > width {
			width = len(row)
		}
	}
	columns := headerNames(g[headerRow-1], width)

	ds := internal.Dataset{Name: name, Columns: columns}
	for _, cells := range g[headerRow:] {
		if blankRow(cells) {
			continue
		}
		row := make(internal.Row, width)
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = nil
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// Preview renders the first n rows as text, padded to a common width.
func (g Grid) Preview(n int) [][]string {
	if n <= 0 || n > len(g) {
		n = len(g)
	}
	width := 0
	for _, row := range g[:n] {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, 0, n)
	for _, row := range g[:n] {
		line := make([]string, width)
		for i, v := range row {
			line[i] = util.CellString(v)
		}
		out = append(out, line)
	}
	return out
}

func headerNames(cells []any, width int) []string {
	seen := map[string]bool{}
	counts := map[string]int{}
	out := make([]string, 0, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(cells) {
			name = normalizeSpaces(util.CellString(cells[i]))
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			base := name
			for seen[name] {
				counts[base]++
				name = fmt.Sprintf("%s.%d", base, counts[base])
			}
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func blankRow(cells []any) bool {
	for _, v := range cells {
		if strings.TrimSpace(util.CellString(v)) != "" {
			return false
		}
	}
	return true
}

func normalizeSpaces(input string) string {
	input = strings.ReplaceAll(input, "\u00A0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}
