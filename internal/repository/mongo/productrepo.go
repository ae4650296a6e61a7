package mongo

import (
	"context"
	"fmt"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/repository/constants"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mongoProduct struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Nome      string             `bson:"nome"`
	Descricao string             `bson:"descricao"`
	Preco     string             `bson:"preco"`
}

// MongoProductRepository implements ProductRepository using the generic DBClient.
type MongoProductRepository struct {
	base
}

func NewMongoProductRepository(dbClient interfaces.DBClient) (*MongoProductRepository, error) {
	b, err := newBase(dbClient)
	if err != nil {
		return nil, err
	}
	return &MongoProductRepository{base: b}, nil
}

func (r *MongoProductRepository) Insert(ctx context.Context, product *models.Product) error {
	id, err := r.insert(ctx, constants.ProductsCollection, bson.M{
		"nome":      product.Nome,
		"descricao": product.Descricao,
		"preco":     product.Preco,
	})
	if err != nil {
		return fmt.Errorf("failed to add product '%s' to MongoDB: %w", product.Nome, err)
	}

	product.IDProduto = id
	return nil
}

func (r *MongoProductRepository) FindByName(ctx context.Context, name string) (models.Lookup[*models.Product], error) {
	var stored mongoProduct
	found, err := r.findOne(ctx, constants.ProductsCollection, bson.M{constants.ProductNameField: name}, &stored)
	if err != nil {
		return models.NotFound[*models.Product](), fmt.Errorf("failed to get product by name from MongoDB: %w", err)
	}
	if !found || stored.ID.IsZero() {
		return models.NotFound[*models.Product](), nil
	}

	return models.Found(&models.Product{
		IDProduto: stored.ID.Hex(),
		Nome:      stored.Nome,
		Descricao: stored.Descricao,
		Preco:     stored.Preco,
	}), nil
}

func (r *MongoProductRepository) EnsureIndices(ctx context.Context) error {
	return r.ensureUnique(ctx, constants.ProductsCollection, constants.ProductNameField)
}
