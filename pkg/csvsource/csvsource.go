// Package csvsource reads the single-line-per-record CSV files content authors
// write in content-src/. It is intentionally narrower than encoding/csv: a cell
// is either a double-quoted run without embedded quotes or a run of non-comma
// characters, and a record never spans lines.
package csvsource

import (
	"fmt"
	"io"
	"strings"
)

// ParseError reports a data line that could not be tokenized.
type ParseError struct {
	Line    int    // 1-based line number in the source file
	Content string // the offending line
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Content)
}

// CellCountError reports a data line whose cell count differs from the
// header. It usually means an empty cell was written as ",," instead of "".
type CellCountError struct {
	Line int
	Got  int
	Want int
}

func (e *CellCountError) Error() string {
	return fmt.Sprintf("line %d: has %d cells, header has %d (write empty cells as \"\")", e.Line, e.Got, e.Want)
}

// Row is one data line keyed by header field name.
type Row struct {
	Line   int
	Fields map[string]string
	Cells  int // cells on the line
	Width  int // fields in the header; 0 for rows not produced by Parse
}

// CheckCells returns a *CellCountError when the line had a different number
// of cells than the header.
func (r Row) CheckCells() error {
	if r.Width == 0 || r.Cells == r.Width {
		return nil
	}
	return &CellCountError{Line: r.Line, Got: r.Cells, Want: r.Width}
}

// Get returns the raw cell for name and whether the line had a cell in that position.
func (r Row) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Value returns the raw cell for name, or "" when absent.
func (r Row) Value(name string) string {
	return r.Fields[name]
}

// Document is a parsed CSV file.
type Document struct {
	Header []string
	Rows   []Row
}

// Parse reads all of r and parses it.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return ParseString(string(data))
}

// ParseString parses CSV text. Blank data lines are skipped; line numbers in
// rows and errors still refer to the original text.
func ParseString(text string) (*Document, error) {
	text = strings.TrimRight(text, " \t\r\n")
	if text == "" {
		return nil, &ParseError{Line: 1, Reason: "missing header line"}
	}

	lines := strings.Split(text, "\n")
	headerLine := strings.TrimSuffix(lines[0], "\r")
	doc := &Document{}
	for _, name := range strings.Split(headerLine, ",") {
		doc.Header = append(doc.Header, strings.TrimSpace(name))
	}

	for i, line := range lines[1:] {
		lineNo := i + 2
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells, err := TokenizeLine(line)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = lineNo
			}
			return nil, err
		}
		doc.Rows = append(doc.Rows, zip(lineNo, doc.Header, cells))
	}

	return doc, nil
}

// TokenizeLine splits one data line into raw cells. Quoted cells lose their
// surrounding quotes; blanks around a quoted cell are ignored. Empty cells
// between consecutive commas produce no token, so later cells shift left;
// authors quote them ("") and Row.CheckCells catches the ones they miss.
func TokenizeLine(line string) ([]string, error) {
	var cells []string
	pos := 0
	for pos < len(line) {
		switch line[pos] {
		case ',':
			pos++

		case '"':
			end := strings.IndexByte(line[pos+1:], '"')
			if end < 0 {
				return nil, &ParseError{Content: line, Reason: fmt.Sprintf("unterminated quote at column %d", pos+1)}
			}
			cells = append(cells, line[pos+1:pos+1+end])
			pos = skipBlanks(line, pos+end+2)
			if pos < len(line) && line[pos] != ',' {
				return nil, &ParseError{Content: line, Reason: fmt.Sprintf("unexpected character after closing quote at column %d", pos+1)}
			}

		default:
			if next := skipBlanks(line, pos); next < len(line) && line[next] == '"' {
				pos = next
				continue
			}
			end := strings.IndexByte(line[pos:], ',')
			if end < 0 {
				end = len(line) - pos
			}
			cell := line[pos : pos+end]
			if q := strings.IndexByte(cell, '"'); q >= 0 {
				return nil, &ParseError{Content: line, Reason: fmt.Sprintf("stray quote at column %d", pos+q+1)}
			}
			cells = append(cells, cell)
			pos += end
		}
	}

	if len(cells) == 0 {
		return nil, &ParseError{Content: line, Reason: "no cells"}
	}
	return cells, nil
}

func skipBlanks(line string, pos int) int {
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	return pos
}

// zip pairs header names with cells by position. Surplus cells are dropped and
// missing cells are simply absent from the map; the counts are kept for
// CheckCells.
func zip(line int, header, cells []string) Row {
	row := Row{
		Line:   line,
		Fields: make(map[string]string, len(header)),
		Cells:  len(cells),
		Width:  len(header),
	}
	for i, name := range header {
		if i < len(cells) {
			row.Fields[name] = cells[i]
		}
	}
	return row
}
