package sqlrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/repository/constants"
	"github.com/haguru/recordmigrator/pkg/databases/sqldb"
)

// SQLProductRepository implements ProductRepository for PostgreSQL and SQLite.
type SQLProductRepository struct {
	dbClient *sqldb.SQLDatabaseClient
}

func NewSQLProductRepository(dbClient *sqldb.SQLDatabaseClient) (*SQLProductRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	return &SQLProductRepository{dbClient: dbClient}, nil
}

// Insert saves a new product and sets its IDProduto.
func (r *SQLProductRepository) Insert(ctx context.Context, product *models.Product) error {
	doc := map[string]interface{}{
		"nome":      product.Nome,
		"descricao": product.Descricao,
		"preco":     product.Preco,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.ProductsCollection, doc)
	if err != nil {
		return fmt.Errorf("failed to add product '%s': %w", product.Nome, translateInsertError(err))
	}

	product.IDProduto = fmt.Sprint(insertedID)
	return nil
}

// FindByName looks a product up by its name.
func (r *SQLProductRepository) FindByName(ctx context.Context, name string) (models.Lookup[*models.Product], error) {
	var product models.Product
	filter := map[string]interface{}{constants.ProductNameField: name}
	if err := r.dbClient.FindOne(ctx, constants.ProductsCollection, filter, &product); err != nil {
		if errors.Is(err, interfaces.ErrNoDocument) {
			return models.NotFound[*models.Product](), nil
		}
		return models.NotFound[*models.Product](), fmt.Errorf("failed to get product by name: %w", err)
	}
	return models.Found(&product), nil
}

func (r *SQLProductRepository) EnsureIndices(ctx context.Context) error {
	return r.dbClient.EnsureSchema(ctx, constants.ProductsCollection, createProductsTable)
}

func (r *SQLProductRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
