package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haguru/recordmigrator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0600))
}

func TestCSVLoader_Load(t *testing.T) {
	dir := t.TempDir()
	// "Caneta Açúcar" in ISO-8859-1
	writeFile(t, dir, "produtos.csv", []byte("nome;descricao;preco\nCaneta A\xe7\xfacar;Azul;2.50\n"))

	loader, err := NewCSVLoader(Options{Directory: dir, Encoding: "ISO-8859-1"})
	require.NoError(t, err)

	table, err := loader.Load("produtos")
	require.NoError(t, err)
	defer table.Close()

	assert.Equal(t, []string{"nome", "descricao", "preco"}, table.Header())
	assert.True(t, table.HasRows())

	row, err := table.Next()
	require.NoError(t, err)
	assert.Equal(t, models.Row{"nome": "Caneta Açúcar", "descricao": "Azul", "preco": "2.50"}, row)
	assert.Equal(t, 2, table.Line())

	_, err = table.Next()
	assert.Equal(t, io.EOF, err)
	assert.True(t, table.HasRows(), "HasRows must not change once rows are consumed")
}

func TestCSVLoader_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vazio.csv", nil)

	loader, err := NewCSVLoader(Options{Directory: dir})
	require.NoError(t, err)

	_, err = loader.Load("missing")
	assert.True(t, errors.Is(err, ErrSourceUnreadable), "missing file: %v", err)

	_, err = loader.Load("vazio")
	assert.True(t, errors.Is(err, ErrSourceUnreadable), "empty file: %v", err)
}

func TestNewCSVLoader(t *testing.T) {
	loader, err := NewCSVLoader(Options{Directory: "data"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "usuarios.csv"), loader.Path("usuarios"))
	assert.Equal(t, charmap.ISO8859_1, loader.encoding)

	_, err = NewCSVLoader(Options{Directory: "data", Encoding: "no-such-charset"})
	assert.Error(t, err)
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   []models.Row
		wantErrs   []error
		hasRows    bool
	}{
		{
			name:       "header only",
			input:      "email;nome\n",
			wantHeader: []string{"email", "nome"},
			hasRows:    false,
		},
		{
			name:       "trims header cells",
			input:      " email ; nome\r\na@x.com;Ana\r\n",
			wantHeader: []string{"email", "nome"},
			wantRows:   []models.Row{{"email": "a@x.com", "nome": "Ana"}},
			wantErrs:   []error{nil},
			hasRows:    true,
		},
		{
			name:       "short row leaves columns absent",
			input:      "email;nome\na@x.com\n",
			wantHeader: []string{"email", "nome"},
			wantRows:   []models.Row{{"email": "a@x.com"}},
			wantErrs:   []error{nil},
			hasRows:    true,
		},
		{
			name:       "extra cells are malformed and reading continues",
			input:      "email;nome\na@x.com;Ana;extra\nb@x.com;Bia\n",
			wantHeader: []string{"email", "nome"},
			wantRows:   []models.Row{nil, {"email": "b@x.com", "nome": "Bia"}},
			wantErrs:   []error{ErrMalformedRow, nil},
			hasRows:    true,
		},
		{
			name:       "blank lines are skipped",
			input:      "email;nome\n\na@x.com;Ana\n\n",
			wantHeader: []string{"email", "nome"},
			wantRows:   []models.Row{{"email": "a@x.com", "nome": "Ana"}},
			wantErrs:   []error{nil},
			hasRows:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(strings.NewReader(tt.input), charmap.ISO8859_1, DefaultDelimiter)
			require.NoError(t, err)

			assert.Equal(t, tt.wantHeader, table.Header())
			assert.Equal(t, tt.hasRows, table.HasRows())

			for i := range tt.wantRows {
				row, err := table.Next()
				if tt.wantErrs[i] != nil {
					assert.True(t, errors.Is(err, tt.wantErrs[i]), "row %d: %v", i, err)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantRows[i], row)
			}

			_, err = table.Next()
			assert.Equal(t, io.EOF, err)
			assert.NoError(t, table.Close())
		})
	}
}

func TestNewTable_StripsBOM(t *testing.T) {
	input := "\ufeffemail;nome\na@x.com;Ana\n"

	utf8Table, err := NewTable(strings.NewReader(input), unicode.UTF8, DefaultDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "email", utf8Table.Header()[0])

	// a UTF-8 file read as ISO-8859-1 carries the BOM as three latin1 runes
	latin1Table, err := NewTable(strings.NewReader(input), charmap.ISO8859_1, DefaultDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "email", latin1Table.Header()[0])
}

func TestNewTable_EmptyInput(t *testing.T) {
	_, err := NewTable(strings.NewReader(""), charmap.ISO8859_1, DefaultDelimiter)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
}
