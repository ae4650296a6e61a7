package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/haguru/recordmigrator/config"
	"github.com/haguru/recordmigrator/internal/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	MAXPOOLSIZE = 20
	IDFIELD     = "_id"
)

// ErrRejectedField is returned when a filter or document carries a field the
// client is not allowed to pass to the server.
var ErrRejectedField = errors.New("MongoDBClient: rejected field")

// MongoDBClient implements the interfaces.DBClient interface for MongoDB operations.
type MongoDBClient struct {
	ServerOpts       *options.ServerAPIOptions
	client           *mongo.Client
	db               *mongo.Database
	timeout          time.Duration
	validCollections map[string]bool // A map to validate collection names
	validFields      map[string]bool // A map to validate field names
	logger           interfaces.Logger
}

// NewMongoDB returns a MongoDB client for the configured collections and fields.
func NewMongoDB(dbConfig *config.MongoDBConfig, logger interfaces.Logger) *MongoDBClient {
	return &MongoDBClient{
		timeout:          dbConfig.Timeout,
		ServerOpts:       config.BuildServerAPIOptions(dbConfig.Options),
		validCollections: config.ListToMap(dbConfig.ValidCollections),
		validFields:      config.ListToMap(dbConfig.ValidFields),
		logger:           logger,
	}
}

// Connect establishes a connection to the MongoDB database using the provided DSN (Data Source Name).
// The DSN should be in the format "mongodb://<host>:<port>/<database>"; the database
// named in its path becomes the active database.
func (m *MongoDBClient) Connect(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("MongoDBClient: DSN is empty")
	}
	if !strings.HasPrefix(dsn, "mongodb://") && !strings.HasPrefix(dsn, "mongodb+srv://") {
		return fmt.Errorf("MongoDBClient: Invalid DSN format, expected 'mongodb://' or 'mongodb+srv://'")
	}

	databaseName, err := getDBNameFromMongoDSN(dsn)
	if err != nil {
		return fmt.Errorf("MongoDBClient: Failed to extract database name from datasource name(dsn): %v", err)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	clientOptions := options.Client().ApplyURI(dsn)
	if m.ServerOpts != nil {
		clientOptions.SetServerAPIOptions(m.ServerOpts)
	}
	clientOptions.SetMaxPoolSize(MAXPOOLSIZE)
	clientOptions.SetReadPreference(readpref.PrimaryPreferred())

	m.logger.Debug("Connecting to MongoDB", "database", databaseName)
	m.client, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	if err = m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("MongoDBClient: Failed to connect to MongoDB server: %v", err)
	}
	m.logger.Info("Connected to MongoDB", "database", databaseName)

	m.db = m.client.Database(databaseName)
	return nil
}

// Disconnect closes the connection to the MongoDB database.
func (m *MongoDBClient) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}

	return nil
}

// InsertOne inserts a document and returns its ID.
func (m *MongoDBClient) InsertOne(ctx context.Context, collectionName string, document interfaces.Document) (interface{}, error) {
	doc, err := m.sanitizeDocument(document)
	if err != nil {
		return nil, err
	}
	if err := m.checkCollection(collectionName); err != nil {
		return nil, err
	}

	res, err := m.db.Collection(collectionName).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("MongoDBClient: Failed to insert one into %s: %w", collectionName, err)
	}

	return res.InsertedID, nil
}

// FindOne retrieves a single document from the specified collection using a filter
// and decodes it into result. Returns interfaces.ErrNoDocument when nothing matches.
func (m *MongoDBClient) FindOne(ctx context.Context, collectionName string, filter interfaces.Document, result interfaces.Document) error {
	query, err := m.sanitizeDocument(filter)
	if err != nil {
		return err
	}
	if len(query) == 0 {
		return fmt.Errorf("MongoDBClient: FindOne in %s requires a non-empty filter", collectionName)
	}
	if err := m.checkCollection(collectionName); err != nil {
		return err
	}

	err = m.db.Collection(collectionName).FindOne(ctx, query).Decode(result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("MongoDBClient: %s: %w", collectionName, interfaces.ErrNoDocument)
		}
		return fmt.Errorf("MongoDBClient: Failed to find one in %s: %w", collectionName, err)
	}

	return nil
}

// Ping verifies the MongoDB connection health using a ping command.
func (m *MongoDBClient) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("MongoDBClient is not connected")
	}
	return m.client.Ping(ctx, nil)
}

// EnsureSchema creates the required indexes on the specified collection. schema is
// a mongo.IndexModel or a []mongo.IndexModel. The collection is created on demand.
func (m *MongoDBClient) EnsureSchema(ctx context.Context, collectionName string, schema interfaces.Document) error {
	if m.db == nil {
		return fmt.Errorf("MongoDBClient is not connected to a database")
	}

	var models []mongo.IndexModel
	switch s := schema.(type) {
	case mongo.IndexModel:
		models = []mongo.IndexModel{s}
	case []mongo.IndexModel:
		models = s
	default:
		return fmt.Errorf("EnsureSchema: expected mongo.IndexModel for MongoDB, got %T", schema)
	}
	if len(models) == 0 {
		return nil
	}

	_, err := m.db.Collection(collectionName).Indexes().CreateMany(ctx, models)
	return err
}

func (m *MongoDBClient) checkCollection(collectionName string) error {
	if m.db == nil {
		return fmt.Errorf("MongoDBClient is not connected to a database")
	}
	if collectionName == "" {
		return fmt.Errorf("MongoDBClient: Collection name cannot be empty")
	}
	if !m.validCollections[collectionName] {
		return fmt.Errorf("MongoDBClient: Invalid collection name: %s", collectionName)
	}
	return nil
}

// sanitizeDocument copies document into a bson.M. The ID field, fields outside
// the allow-list and any key that could be read as an operator ($) or a path (.)
// are refused rather than dropped, so a filter never widens to match other records.
func (m *MongoDBClient) sanitizeDocument(document interfaces.Document) (bson.M, error) {
	var docMap map[string]interface{}
	switch d := document.(type) {
	case bson.M:
		docMap = d
	case map[string]interface{}:
		docMap = d
	default:
		return nil, fmt.Errorf("MongoDBClient: expected a map document, got %T", document)
	}

	sanitized := make(bson.M, len(docMap))
	var rejected []string
	for key, value := range docMap {
		if key == IDFIELD || !m.validFields[key] || strings.ContainsAny(key, "$.") {
			rejected = append(rejected, key)
			continue
		}
		sanitized[key] = value
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		m.logger.Warn("Refusing invalid or unsafe field names", "fields", rejected)
		return nil, fmt.Errorf("%w: %s", ErrRejectedField, strings.Join(rejected, ", "))
	}

	return sanitized, nil
}

// getDBNameFromMongoDSN extracts the database name from a MongoDB DSN.
func getDBNameFromMongoDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse MongoDB DSN: %w", err)
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("no database name found in MongoDB DSN path: %s", dsn)
	}

	// If the path contains additional segments (e.g., /db/collection), use only the first as the database name.
	if idx := strings.Index(dbName, "/"); idx != -1 {
		dbName = dbName[:idx]
	}

	return dbName, nil
}
