package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/haguru/recordmigrator/internal/interfaces"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // registers the "postgres" driver
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 10
	// DefaultMaxIdleConns is the default maximum number of idle connections to the database.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 30 * time.Second
)

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	Name       string
	DriverName string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Init statements run once after connecting.
	Init []string
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		DriverName:  "postgres",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	SQLite = Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		Placeholder: func(int) string { return "?" },
		Init:        []string{"PRAGMA foreign_keys=ON"},
	}

	identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported SQL dialect: %s", name)
	}
}

// Options configures the connection pool and the tables the client may touch.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// KeyColumns maps each valid table to its surrogate key column.
	KeyColumns map[string]string
}

// SQLDatabaseClient implements the DBClient interface for SQL databases.
type SQLDatabaseClient struct {
	db              *sql.DB
	dialect         Dialect
	MaxOpenConns    int           // MaxOpenConns is the maximum number of open connections to the database
	MaxIdleConns    int           // MaxIdleConns is the maximum number of idle connections to the database
	ConnMaxLifetime time.Duration // ConnMaxLifetime is the maximum amount of time a connection may be reused
	keyColumns      map[string]string
}

// NewSQLDatabaseClient creates an unconnected client for the dialect.
func NewSQLDatabaseClient(dialect Dialect, opts Options) *SQLDatabaseClient {
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = DefaultMaxOpenConns
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = DefaultMaxIdleConns
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if dialect.Name == SQLite.Name {
		// one long-lived connection keeps the Init pragmas in effect
		opts.MaxOpenConns = 1
		opts.MaxIdleConns = 1
		opts.ConnMaxLifetime = 0
	}

	return &SQLDatabaseClient{
		dialect:         dialect,
		MaxOpenConns:    opts.MaxOpenConns,
		MaxIdleConns:    opts.MaxIdleConns,
		ConnMaxLifetime: opts.ConnMaxLifetime,
		keyColumns:      opts.KeyColumns,
	}
}

// Dialect returns the client's dialect.
func (p *SQLDatabaseClient) Dialect() Dialect {
	return p.dialect
}

// Connect opens the database and verifies it is reachable.
func (p *SQLDatabaseClient) Connect(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("%s: DSN is empty", p.dialect.Name)
	}

	var err error
	p.db, err = sql.Open(p.dialect.DriverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", p.dialect.Name, err)
	}

	p.db.SetMaxOpenConns(p.MaxOpenConns)
	p.db.SetMaxIdleConns(p.MaxIdleConns)
	p.db.SetConnMaxLifetime(p.ConnMaxLifetime)

	for _, stmt := range p.dialect.Init {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			_ = p.db.Close()
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	return p.Ping(ctx)
}

// Disconnect closes the database connection.
func (p *SQLDatabaseClient) Disconnect(ctx context.Context) error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// InsertOne inserts a single row. 'document' is expected to be a map[string]interface{}.
// When the table's key column is absent from the document a UUID is generated for it.
// The key of the inserted row is returned.
func (p *SQLDatabaseClient) InsertOne(ctx context.Context, tableName string, document interfaces.Document) (interface{}, error) {
	if p.db == nil {
		return nil, fmt.Errorf("%s client is not connected", p.dialect.Name)
	}

	docMap, ok := document.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s InsertOne expects document to be map[string]interface{}", p.dialect.Name)
	}

	keyColumn, err := p.keyColumn(tableName)
	if err != nil {
		return nil, err
	}

	row := make(map[string]interface{}, len(docMap)+1)
	for k, v := range docMap {
		row[k] = v
	}
	if _, exists := row[keyColumn]; !exists {
		row[keyColumn] = uuid.New().String()
	}

	columns, err := sortedColumns(row)
	if err != nil {
		return nil, err
	}
	placeholders := make([]string, 0, len(columns))
	values := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		placeholders = append(placeholders, p.dialect.Placeholder(i+1))
		values = append(values, row[col])
	}

	// Table and column names are checked against the identifier pattern above.
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		keyColumn,
	) // #nosec G201

	var insertedID interface{}
	if err := p.db.QueryRowContext(ctx, query, values...).Scan(&insertedID); err != nil {
		return nil, err
	}
	if b, ok := insertedID.([]byte); ok {
		insertedID = string(b)
	}
	return insertedID, nil
}

// FindOne retrieves a single row. 'filter' is expected to be a map[string]interface{}
// for the WHERE clause and 'result' a pointer to a struct whose `db` tags name the
// selected columns. Returns interfaces.ErrNoDocument when nothing matches.
func (p *SQLDatabaseClient) FindOne(ctx context.Context, tableName string, filter interfaces.Document, result interfaces.Document) error {
	if p.db == nil {
		return fmt.Errorf("%s client is not connected", p.dialect.Name)
	}

	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%s FindOne expects filter to be map[string]interface{}", p.dialect.Name)
	}
	if len(filterMap) == 0 {
		return fmt.Errorf("%s FindOne requires a non-empty filter", p.dialect.Name)
	}
	if _, err := p.keyColumn(tableName); err != nil {
		return err
	}

	filterColumns, err := sortedColumns(filterMap)
	if err != nil {
		return err
	}
	whereClauses := make([]string, 0, len(filterColumns))
	whereValues := make([]interface{}, 0, len(filterColumns))
	for i, col := range filterColumns {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = %s", col, p.dialect.Placeholder(i+1)))
		whereValues = append(whereValues, filterMap[col])
	}

	resultValue := reflect.ValueOf(result)
	if resultValue.Kind() != reflect.Ptr || resultValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("result must be a pointer to a struct")
	}
	elem := resultValue.Elem()

	var columns []string
	var fieldPointers []interface{}
	for i := 0; i < elem.NumField(); i++ {
		column := elem.Type().Field(i).Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		if !identifierPattern.MatchString(column) {
			return fmt.Errorf("invalid column name: %s", column)
		}
		columns = append(columns, column)
		fieldPointers = append(fieldPointers, elem.Field(i).Addr().Interface())
	}
	if len(columns) == 0 {
		return fmt.Errorf("result struct has no db-tagged fields")
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1",
		strings.Join(columns, ", "),
		tableName,
		strings.Join(whereClauses, " AND "),
	) // #nosec G201

	err = p.db.QueryRowContext(ctx, query, whereValues...).Scan(fieldPointers...)
	if errors.Is(err, sql.ErrNoRows) {
		elem.Set(reflect.Zero(elem.Type()))
		return fmt.Errorf("%s.%s: %w", p.dialect.Name, tableName, interfaces.ErrNoDocument)
	}
	return err
}

// Ping checks the health of the connection.
func (p *SQLDatabaseClient) Ping(ctx context.Context) error {
	if p.db == nil {
		return fmt.Errorf("%s client is not connected", p.dialect.Name)
	}
	return p.db.PingContext(ctx)
}

// EnsureSchema executes a CREATE statement (or a list of them) for the table.
func (p *SQLDatabaseClient) EnsureSchema(ctx context.Context, tableName string, schema interfaces.Document) error {
	if p.db == nil {
		return fmt.Errorf("%s client is not connected", p.dialect.Name)
	}

	var statements []string
	switch s := schema.(type) {
	case string:
		statements = []string{s}
	case []string:
		statements = s
	default:
		return fmt.Errorf("EnsureSchema for %s expects a statement string or list, got %T", tableName, schema)
	}

	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema for %s: %w", tableName, err)
		}
	}
	return nil
}

// keyColumn validates the table name and returns its surrogate key column.
func (p *SQLDatabaseClient) keyColumn(tableName string) (string, error) {
	keyColumn, ok := p.keyColumns[tableName]
	if !ok || !identifierPattern.MatchString(tableName) {
		return "", fmt.Errorf("invalid table name: %s", tableName)
	}
	return keyColumn, nil
}

func sortedColumns(m map[string]interface{}) ([]string, error) {
	columns := make([]string, 0, len(m))
	for col := range m {
		if !identifierPattern.MatchString(col) {
			return nil, fmt.Errorf("invalid column name: %s", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, nil
}
