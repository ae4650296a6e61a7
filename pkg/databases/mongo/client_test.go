package mongo

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/haguru/recordmigrator/config"
	"github.com/haguru/recordmigrator/pkg/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestClient() *MongoDBClient {
	return NewMongoDB(&config.MongoDBConfig{
		Timeout:          time.Second,
		ValidCollections: []string{"users", "products"},
		ValidFields:      []string{"email", "nome"},
		Options:          config.MongoServerOptions{APIVersion: "1"},
	}, zerolog.NewLogger("test", zerolog.FormatJSON, io.Discard))
}

func TestGetDBNameFromMongoDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{"simple", "mongodb://localhost:27017/migrationDB", "migrationDB", false},
		{"with options", "mongodb://localhost:27017/migrationDB?authSource=admin", "migrationDB", false},
		{"extra segments", "mongodb+srv://cluster.example.com/migrationDB/users", "migrationDB", false},
		{"no database", "mongodb://localhost:27017", "", true},
		{"unparseable", "mongodb://%zz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getDBNameFromMongoDSN(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Errorf("getDBNameFromMongoDSN() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("getDBNameFromMongoDSN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMongoDBClient_SanitizeDocument(t *testing.T) {
	m := newTestClient()

	got, err := m.sanitizeDocument(bson.M{"email": "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"email": "a@x.com"}, got)

	got, err = m.sanitizeDocument(map[string]interface{}{"nome": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"nome": "Ana"}, got)

	_, err = m.sanitizeDocument(bson.M{
		"_id":      "forced",
		"email":    "a@x.com",
		"$where":   "1 == 1",
		"nome.x":   "path",
		"password": "unknown field",
	})
	require.ErrorIs(t, err, ErrRejectedField)
	assert.Contains(t, err.Error(), "$where, _id, nome.x, password")

	_, err = m.sanitizeDocument("not a map")
	assert.Error(t, err)
}

func TestMongoDBClient_RejectsFieldsOutsideAllowList(t *testing.T) {
	m := NewMongoDB(&config.MongoDBConfig{
		ValidCollections: []string{"usuarios", "vendas"},
		ValidFields:      []string{"nome", "email_usuario"},
	}, zerolog.NewLogger("test", zerolog.FormatJSON, io.Discard))
	ctx := context.Background()

	// a natural-key filter that lost its only field would match any record
	var user bson.M
	err := m.FindOne(ctx, "usuarios", bson.M{"email": "a@x.com"}, &user)
	require.ErrorIs(t, err, ErrRejectedField)
	assert.Nil(t, user)

	err = m.FindOne(ctx, "usuarios", bson.M{}, &user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty filter")

	// a sale must not be stored without its foreign key
	_, err = m.InsertOne(ctx, "vendas", bson.M{"email_usuario": "a@x.com", "id_usuario": "u-1"})
	require.ErrorIs(t, err, ErrRejectedField)
	assert.Contains(t, err.Error(), "id_usuario")
}

func TestMongoDBClient_NotConnected(t *testing.T) {
	m := newTestClient()
	ctx := context.Background()

	_, err := m.InsertOne(ctx, "users", bson.M{"email": "a@x.com"})
	assert.Error(t, err)
	assert.Error(t, m.FindOne(ctx, "users", bson.M{"email": "a@x.com"}, &bson.M{}))
	assert.Error(t, m.Ping(ctx))
	assert.Error(t, m.EnsureSchema(ctx, "users", nil))
	assert.NoError(t, m.Disconnect(ctx))
}

func TestMongoDBClient_ConnectRejectsBadDSN(t *testing.T) {
	m := newTestClient()
	ctx := context.Background()

	assert.Error(t, m.Connect(ctx, ""))
	assert.Error(t, m.Connect(ctx, "postgres://localhost/db"))
	assert.Error(t, m.Connect(ctx, "mongodb://localhost:27017"))
}
