package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/haguru/recordmigrator/internal/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongosdk "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// base holds what the three Mongo repositories share. Surrogate keys are
// ObjectIDs rendered as hex.
type base struct {
	dbClient interfaces.DBClient
}

func newBase(dbClient interfaces.DBClient) (base, error) {
	if dbClient == nil {
		return base{}, fmt.Errorf("dbClient cannot be nil")
	}
	return base{dbClient: dbClient}, nil
}

// insert stores doc in collection and returns the hex ObjectID assigned to it.
func (b base) insert(ctx context.Context, collection string, doc bson.M) (string, error) {
	insertedID, err := b.dbClient.InsertOne(ctx, collection, doc)
	if err != nil {
		if mongosdk.IsDuplicateKeyError(err) {
			return "", errors.Join(interfaces.ErrDuplicateKey, err)
		}
		return "", err
	}

	objID, ok := insertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// findOne decodes the document matching filter into result. found is false
// when nothing matches.
func (b base) findOne(ctx context.Context, collection string, filter bson.M, result interface{}) (found bool, err error) {
	err = b.dbClient.FindOne(ctx, collection, filter, result)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoDocument) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b base) ensureUnique(ctx context.Context, collection, field string) error {
	indexModel := mongosdk.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	return b.dbClient.EnsureSchema(ctx, collection, indexModel)
}

func (b base) ensureIndex(ctx context.Context, collection string, fields ...string) error {
	indexModels := make([]mongosdk.IndexModel, 0, len(fields))
	for _, field := range fields {
		indexModels = append(indexModels, mongosdk.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
	}
	return b.dbClient.EnsureSchema(ctx, collection, indexModels)
}

// Close disconnects the MongoDB client.
func (b base) Close(ctx context.Context) error {
	return b.dbClient.Disconnect(ctx)
}
