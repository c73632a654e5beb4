package export

import (
	"bytes"
	"fmt"
	"strings"
)

// CSVExporter renders Dataset records into CSV bytes.
// Forced-quote columns escape embedded quotes by doubling them and flatten line breaks to spaces.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}

	for i, header := range data.Headers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeField(buf, header, false)
	}
	buf.WriteByte('\n')

	for _, row := range data.Rows {
		for i, col := range data.Columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeField(buf, row[col.Key], col.Quote)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func writeField(buf *bytes.Buffer, value string, quote bool) {
	value = lineBreaks.Replace(value)
	if !quote && !strings.ContainsAny(value, `,"`) {
		buf.WriteString(value)
		return
	}
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(value, `"`, `""`))
	buf.WriteByte('"')
}
