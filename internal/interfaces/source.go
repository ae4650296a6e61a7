package interfaces

import "github.com/haguru/recordmigrator/internal/models"

// SourceLoader opens a source file by its configured name.
type SourceLoader interface {
	Load(fileName string) (SourceTable, error)
}

// SourceTable is a parsed source file: a header and a lazy sequence of rows.
type SourceTable interface {
	Header() []string
	// HasRows reports whether at least one data row follows the header.
	HasRows() bool
	// Next returns the following row, or io.EOF when no rows remain.
	Next() (models.Row, error)
	// Line is the source line of the row last returned by Next.
	Line() int
	Close() error
}
