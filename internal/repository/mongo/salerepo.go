package mongo

import (
	"context"
	"fmt"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/repository/constants"

	"go.mongodb.org/mongo-driver/bson"
)

// MongoSaleRepository implements SaleRepository using the generic DBClient.
// Sales keep the hex keys of their user and product.
type MongoSaleRepository struct {
	base
}

func NewMongoSaleRepository(dbClient interfaces.DBClient) (*MongoSaleRepository, error) {
	b, err := newBase(dbClient)
	if err != nil {
		return nil, err
	}
	return &MongoSaleRepository{base: b}, nil
}

func (r *MongoSaleRepository) Insert(ctx context.Context, sale *models.Sale) error {
	id, err := r.insert(ctx, constants.SalesCollection, bson.M{
		constants.UserKeyColumn:    sale.IDUsuario,
		constants.ProductKeyColumn: sale.IDProduto,
		"email_usuario":            sale.EmailUsuario,
		"produto":                  sale.Produto,
		"quantidade":               sale.Quantidade,
		"valor":                    sale.Valor,
		"data_venda":               sale.DataVenda,
	})
	if err != nil {
		return fmt.Errorf("failed to add sale (%s) to MongoDB: %w", sale, err)
	}

	sale.IDVenda = id
	return nil
}

// EnsureIndices indexes sales by user and by product.
func (r *MongoSaleRepository) EnsureIndices(ctx context.Context) error {
	return r.ensureIndex(ctx, constants.SalesCollection, constants.UserKeyColumn, constants.ProductKeyColumn)
}
