package iss

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

// CommentMarker starts every metadata and header line of a scan file.
const CommentMarker = "#"

// metadataSeparator splits a metadata line into key and value.
const metadataSeparator = ":"

// maxLineBytes bounds a single line of a scan file.
const maxLineBytes = 1 << 20

// HeaderOptions controls how the comment block is interpreted.
type HeaderOptions struct {
	// SafeKeys rewrites "." in metadata keys to "-".
	SafeKeys bool

	// StrictHeader rejects files with more than one header line.
	// When false the first header line wins.
	StrictHeader bool
}

// Header is the parsed comment block of a scan file.
type Header struct {
	// Metadata holds the key-value lines in file order.
	Metadata domain.Metadata

	// Columns is the header line verbatim, column names separated by whitespace.
	Columns string

	// Line is the 1-based line number of the header line.
	Line int

	// HeaderLines counts every comment line that looked like a header.
	HeaderLines int
}

// ColumnNames splits the header line into column names.
func (h *Header) ColumnNames() []string {
	return strings.Fields(h.Columns)
}

// Scan is a fully parsed scan file.
type Scan struct {
	Header

	// Table holds one column per header name, one row per data line.
	Table *domain.Table
}

type dataLine struct {
	number int
	text   string
}

// ParseHeader reads the comment block of a scan file into metadata and
// the header line. Data lines are ignored.
func ParseHeader(content []byte, opts HeaderOptions) (*Header, error) {
	h, _, err := scanLines(content, opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Parse reads a complete scan file: the comment block plus the data rows,
// mapped positionally onto the header's column names.
func Parse(content []byte, opts HeaderOptions) (*Scan, error) {
	h, rows, err := scanLines(content, opts)
	if err != nil {
		return nil, err
	}

	columns := h.ColumnNames()
	table, err := domain.NewTable(columns...)
	if err != nil {
		return nil, &domain.ParseError{Line: h.Line, Reason: err.Error()}
	}

	values := make([]float64, len(columns))
	for _, row := range rows {
		fields := strings.Fields(row.text)
		if len(fields) != len(columns) {
			return nil, &domain.ParseError{
				Line:   row.number,
				Reason: fmt.Sprintf("row has %d values, header has %d columns", len(fields), len(columns)),
			}
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &domain.ParseError{
					Line:   row.number,
					Reason: fmt.Sprintf("column %s: invalid number %q", columns[i], f),
				}
			}
			values[i] = v
		}
		if err := table.AppendRow(values); err != nil {
			return nil, &domain.ParseError{Line: row.number, Reason: err.Error()}
		}
	}

	return &Scan{Header: *h, Table: table}, nil
}

// scanLines splits content into the parsed comment block and the raw data lines.
func scanLines(content []byte, opts HeaderOptions) (*Header, []dataLine, error) {
	h := &Header{}
	var rows []dataLine

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	number := 0
	for sc.Scan() {
		number++
		line := strings.TrimRight(sc.Text(), "\r")

		if !strings.HasPrefix(line, CommentMarker) {
			if strings.TrimSpace(line) != "" {
				rows = append(rows, dataLine{number: number, text: line})
			}
			continue
		}

		body := stripMarker(line)
		if strings.TrimSpace(body) == "" {
			continue
		}

		if key, value, ok := strings.Cut(body, metadataSeparator); ok {
			key = strings.TrimSpace(key)
			if opts.SafeKeys {
				key = domain.SafeKey(key)
			}
			h.Metadata.Set(key, strings.TrimSpace(value))
			continue
		}

		h.HeaderLines++
		if h.HeaderLines == 1 {
			h.Columns = strings.TrimSpace(body)
			h.Line = number
			continue
		}
		if opts.StrictHeader {
			return nil, nil, &domain.ParseError{
				Line:   number,
				Reason: fmt.Sprintf("second header line (first at line %d)", h.Line),
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, &domain.ParseError{Line: number + 1, Reason: err.Error()}
	}

	if h.HeaderLines == 0 {
		return nil, nil, &domain.ParseError{Reason: "no header line in comment block"}
	}
	return h, rows, nil
}

// stripMarker removes the comment marker and exactly one following
// whitespace character.
func stripMarker(line string) string {
	body := strings.TrimPrefix(line, CommentMarker)
	if body != "" && (body[0] == ' ' || body[0] == '\t') {
		body = body[1:]
	}
	return body
}
