package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// TableOptions configures the delimited-table reader.
type TableOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// Table is a header-aware tabular dataset. Rows are exposed as records
// keyed by the header names so the attr package can resolve aliases on
// them the same way it does on GeoJSON properties.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable parses a delimited table from r. The first row is the header;
// short rows are tolerated (missing cells read as empty).
func ReadTable(r io.Reader, opts TableOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var t Table
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "table: read row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if t.Header == nil {
			t.Header = record
			continue
		}
		t.Rows = append(t.Rows, record)
	}

	if t.Header == nil {
		return nil, eris.New("table: empty input, no header row")
	}
	return &t, nil
}

// Records converts the rows to maps keyed by header name.
func (t *Table) Records() []map[string]any {
	recs := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Header))
		for i, name := range t.Header {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		recs = append(recs, rec)
	}
	return recs
}
