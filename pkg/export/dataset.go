package export

// Column describes one exported field.
type Column struct {
	Key    string
	Header string
	// Quote forces CSV quoting of every value in the column.
	Quote bool
	// Weight is the relative PDF column width; zero counts as 1.
	Weight float64
}

// Dataset defines tabular export content. Rows are keyed by Column.Key.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Headers returns the column headers in order.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
	}
	return headers
}
