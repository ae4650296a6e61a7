// Package source reads delimited source files into lazily iterated tables
// whose rows are addressed by column name.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

const (
	DefaultExtension = ".csv"
	DefaultDelimiter = ';'
	utf8BOM          = "\ufeff"
	latin1BOM        = "\u00ef\u00bb\u00bf"
)

var (
	// ErrSourceUnreadable covers missing, empty and unparseable source files.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrMalformedRow is returned by Next for a row that cannot be mapped to the header.
	ErrMalformedRow = errors.New("malformed row")
)

// Options describes where source files live and how they are encoded.
type Options struct {
	Directory string
	Extension string
	Encoding  string
	Delimiter rune
}

// CSVLoader opens delimited files from a directory.
type CSVLoader struct {
	opts     Options
	encoding encoding.Encoding
}

// NewCSVLoader creates a loader. An empty encoding means ISO-8859-1.
func NewCSVLoader(opts Options) (*CSVLoader, error) {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = DefaultDelimiter
	}

	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	return &CSVLoader{opts: opts, encoding: enc}, nil
}

// LookupEncoding resolves an IANA charset name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown source encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
	return enc, nil
}

// Path returns the file path a file name resolves to.
func (l *CSVLoader) Path(fileName string) string {
	return filepath.Join(l.opts.Directory, fileName+l.opts.Extension)
}

// Load opens the named source file and reads its header.
func (l *CSVLoader) Load(fileName string) (interfaces.SourceTable, error) {
	path := l.Path(fileName)

	f, err := os.Open(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}

	table, err := NewTable(f, l.encoding, l.opts.Delimiter)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	table.closer = f

	return table, nil
}

// Table is a header plus a lazy sequence of rows.
type Table struct {
	reader  *csv.Reader
	closer  io.Closer
	header  []string
	line    int
	hasRows bool
	peeked  bool
	peekRec []string
	peekErr error
}

// NewTable reads the header of r and looks ahead one record so HasRows is known.
func NewTable(r io.Reader, enc encoding.Encoding, delimiter rune) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrSourceUnreadable)
		}
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrSourceUnreadable, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(strings.TrimPrefix(header[0], utf8BOM), latin1BOM)

	t := &Table{reader: reader, header: header}
	t.peekRec, t.peekErr = reader.Read()
	t.peeked = true
	t.hasRows = !errors.Is(t.peekErr, io.EOF)

	var parseErr *csv.ParseError
	if t.peekErr != nil && !errors.Is(t.peekErr, io.EOF) && !errors.As(t.peekErr, &parseErr) {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, t.peekErr)
	}

	return t, nil
}

// Header returns the column names in file order.
func (t *Table) Header() []string {
	return t.header
}

// HasRows reports whether at least one data row follows the header.
func (t *Table) HasRows() bool {
	return t.hasRows
}

// Line returns the file line of the row last returned by Next.
func (t *Table) Line() int {
	return t.line
}

// Next returns the following row, or io.EOF once the table is exhausted.
// A row with more cells than the header yields ErrMalformedRow; reading may continue.
func (t *Table) Next() (models.Row, error) {
	var record []string
	var err error
	if t.peeked {
		record, err = t.peekRec, t.peekErr
		t.peeked, t.peekRec, t.peekErr = false, nil, io.EOF
	} else {
		record, err = t.reader.Read()
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			t.line = parseErr.Line
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	t.line, _ = t.reader.FieldPos(0)

	if len(record) > len(t.header) {
		return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
			ErrMalformedRow, t.line, len(record), len(t.header))
	}

	row := make(models.Row, len(record))
	for i, cell := range record {
		row[t.header[i]] = cell
	}

	return row, nil
}

// Close releases the underlying file, if any.
func (t *Table) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
