package internal

// Row maps a column name to its cell value. Values are string, float64,
// bool or nil.
type Row map[string]any

type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

type InputFormat string

const (
	FormatXLSX  InputFormat = "xlsx"
	FormatHTML  InputFormat = "html"
	FormatEmail InputFormat = "eml"
)

// TableRef points at one table inside an input file.
type TableRef struct {
	Path       string
	Sheet      string
	HeaderRow  int
	Attachment string
}

type SourceReport struct {
	Name          string
	Path          string
	CodeColumn    string
	PriceColumn   string
	Discount      float64
	Rows          int
	Mapped        int
	Skipped       int
	Matches       int
	Modifications int
}

type RunReport struct {
	MasterPath         string
	MasterRows         int
	OutputPath         string
	Sources            []SourceReport
	TotalMatches       int
	TotalModifications int
	FinalMatches       int
	FinalModifications int
}
