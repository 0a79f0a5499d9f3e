package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"costsync/internal"
)

// Preview prints raw rows numbered from 1 so the user can tell which row
// holds the column titles.
func Preview(w io.Writer, rows [][]string) error {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := make([]string, 0, width+1)
	headers = append(headers, "#")
	for i := 0; i < width; i++ {
		headers = append(headers, strconv.Itoa(i))
	}

	body := make([][]string, 0, len(rows))
	for i, row := range rows {
		line := make([]string, 0, width+1)
		line = append(line, strconv.Itoa(i+1))
		line = append(line, row...)
		for len(line) < width+1 {
			line = append(line, "")
		}
		body = append(body, line)
	}
	render(w, headers, body)
	return nil
}

// Columns lists a table's columns and marks the suggested code and price
// columns.
func Columns(w io.Writer, columns []string, code, price string) error {
	body := make([][]string, 0, len(columns))
	for i, c := range columns {
		mark := ""
		switch c {
		case code:
			mark = "code"
		case price:
			mark = "price"
		}
		body = append(body, []string{strconv.Itoa(i + 1), c, mark})
	}
	render(w, []string{"#", "column", "suggested"}, body)
	return nil
}

func Run(w io.Writer, r internal.RunReport) error {
	body := make([][]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		body = append(body, []string{
			s.Name, s.CodeColumn, s.PriceColumn,
			strconv.FormatFloat(s.Discount, 'f', -1, 64) + "%",
			strconv.Itoa(s.Rows), strconv.Itoa(s.Mapped), strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Matches), strconv.Itoa(s.Modifications),
		})
	}
	headers := []string{"source", "code", "price", "discount", "rows", "mapped", "skipped", "matches", "modified"}
	render(w, headers, body)

	if _, err := fmt.Fprintf(w, "%d matching products across sources, %d modified; the rest kept their list price.\n", r.TotalMatches, r.TotalModifications); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "after merging: %d of %d master rows matched, %d modified.\n", r.FinalMatches, r.MasterRows, r.FinalModifications); err != nil {
		return err
	}
	if r.OutputPath != "" {
		_, err := fmt.Fprintf(w, "written to %s\n", r.OutputPath)
		return err
	}
	return nil
}

func render(w io.Writer, headers []string, body [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.AppendBulk(body)
	table.Render()
}
