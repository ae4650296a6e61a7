package sqlrepo

import (
	"errors"
	"strings"

	"github.com/haguru/recordmigrator/internal/interfaces"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// The statements are valid for both PostgreSQL and SQLite.
const (
	createUsersTable = `CREATE TABLE IF NOT EXISTS usuarios (
	id_usuario TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	nome       TEXT NOT NULL DEFAULT ''
)`

	createProductsTable = `CREATE TABLE IF NOT EXISTS produtos (
	id_produto TEXT PRIMARY KEY,
	nome       TEXT NOT NULL UNIQUE,
	descricao  TEXT NOT NULL DEFAULT '',
	preco      TEXT NOT NULL DEFAULT ''
)`

	createSalesTable = `CREATE TABLE IF NOT EXISTS vendas (
	id_venda      TEXT PRIMARY KEY,
	id_usuario    TEXT NOT NULL REFERENCES usuarios (id_usuario),
	id_produto    TEXT NOT NULL REFERENCES produtos (id_produto),
	email_usuario TEXT NOT NULL,
	produto       TEXT NOT NULL,
	quantidade    TEXT NOT NULL DEFAULT '',
	valor         TEXT NOT NULL DEFAULT '',
	data_venda    TEXT NOT NULL DEFAULT ''
)`

	// pqUniqueViolation is the PostgreSQL unique_violation SQLSTATE.
	pqUniqueViolation = "23505"
)

// translateInsertError maps unique violations of either backend to ErrDuplicateKey.
func translateInsertError(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == pqUniqueViolation {
		return errors.Join(interfaces.ErrDuplicateKey, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE constraint failed")) {
			return errors.Join(interfaces.ErrDuplicateKey, err)
		}
	}

	return err
}
