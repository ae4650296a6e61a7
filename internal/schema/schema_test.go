package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		expected []string
		want     bool
	}{
		{"equal", []string{"email", "nome"}, []string{"email", "nome"}, true},
		{"missing column", []string{"email", "name"}, []string{"email", "name", "age"}, false},
		{"extra column", []string{"email", "name", "age"}, []string{"email", "name"}, false},
		{"reordered", []string{"nome", "email"}, []string{"email", "nome"}, false},
		{"case differs", []string{"Email"}, []string{"email"}, false},
		{"both empty", []string{}, []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.header, tt.expected))
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]string{"email", "name", "age"}, "email;name;age"))

	err := Validate([]string{"email", "name"}, "email;name;age")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "expected [email;name;age], got [email;name]")
}

func TestSplitPattern(t *testing.T) {
	assert.Equal(t, []string{"email_usuario", "produto", "valor"}, SplitPattern("email_usuario;produto;valor"))
	assert.Equal(t, []string{""}, SplitPattern(""))
}

func TestBind(t *testing.T) {
	columns := []string{"email", "nome"}
	keys := []string{"email"}

	t.Run("subset of columns with key", func(t *testing.T) {
		assert.NoError(t, Bind([]string{"email"}, columns, keys))
	})

	t.Run("all columns", func(t *testing.T) {
		assert.NoError(t, Bind([]string{"nome", "email"}, columns, keys))
	})

	t.Run("unknown column", func(t *testing.T) {
		err := Bind([]string{"email", "idade"}, columns, keys)
		require.ErrorIs(t, err, ErrUnboundColumn)
		assert.Contains(t, err.Error(), "idade")
	})

	t.Run("missing key column", func(t *testing.T) {
		err := Bind([]string{"nome"}, columns, keys)
		require.ErrorIs(t, err, ErrUnboundColumn)
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("duplicated column", func(t *testing.T) {
		err := Bind([]string{"email", "email"}, columns, keys)
		require.ErrorIs(t, err, ErrUnboundColumn)
	})
}
