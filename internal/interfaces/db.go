package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrNoDocument is returned by FindOne when nothing matches the filter.
	ErrNoDocument = errors.New("no document found")
	// ErrDuplicateKey is returned by repository inserts rejected by a unique natural key.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Document is a generic interface to represent data that can be stored
// and retrieved from the database. It could be a struct, a map[string]interface{},
// or any type that can be marshaled/unmarshaled by the specific database driver.
type Document interface{}

// DBClient defines the interface for a generic database client.
// It abstracts the operations the migrator needs across database types
// (e.g., MongoDB, PostgreSQL, SQLite). Records are only ever inserted and
// looked up, never updated or deleted.
type DBClient interface {
	// Connect establishes a connection to the database.
	// It takes a context for cancellation and timeouts, and a DSN (Data Source Name) string.
	// Returns an error if the connection fails.
	Connect(ctx context.Context, dsn string) error

	// Disconnect closes the database connection.
	Disconnect(ctx context.Context) error

	// InsertOne inserts a single document into the specified collection/table.
	// Returns the store-assigned ID of the inserted document (e.g., MongoDB ObjectID, SQL key).
	InsertOne(ctx context.Context, collectionName string, document Document) (interface{}, error)

	// FindOne retrieves a single document from the specified collection/table
	// that matches the provided filter and decodes it into result.
	// Returns ErrNoDocument (possibly wrapped) if nothing matches.
	FindOne(ctx context.Context, collectionName string, filter Document, result Document) error

	// EnsureSchema prepares a collection/table. The schema document is
	// backend specific: a CREATE statement for SQL, an index model for MongoDB.
	EnsureSchema(ctx context.Context, collectionName string, schema Document) error

	// Ping checks the health of the database connection.
	Ping(ctx context.Context) error
}
