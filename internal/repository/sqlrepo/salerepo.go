package sqlrepo

import (
	"context"
	"fmt"

	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/repository/constants"
	"github.com/haguru/recordmigrator/pkg/databases/sqldb"
)

// SQLSaleRepository implements SaleRepository for PostgreSQL and SQLite.
// The vendas table references usuarios and produtos by surrogate key.
type SQLSaleRepository struct {
	dbClient *sqldb.SQLDatabaseClient
}

func NewSQLSaleRepository(dbClient *sqldb.SQLDatabaseClient) (*SQLSaleRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	return &SQLSaleRepository{dbClient: dbClient}, nil
}

// Insert saves a resolved sale and sets its IDVenda.
func (r *SQLSaleRepository) Insert(ctx context.Context, sale *models.Sale) error {
	doc := map[string]interface{}{
		"id_usuario":    sale.IDUsuario,
		"id_produto":    sale.IDProduto,
		"email_usuario": sale.EmailUsuario,
		"produto":       sale.Produto,
		"quantidade":    sale.Quantidade,
		"valor":         sale.Valor,
		"data_venda":    sale.DataVenda,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.SalesCollection, doc)
	if err != nil {
		return fmt.Errorf("failed to add sale (%s): %w", sale, translateInsertError(err))
	}

	sale.IDVenda = fmt.Sprint(insertedID)
	return nil
}

// EnsureIndices creates the sales table. It must run after the users and
// products tables exist.
func (r *SQLSaleRepository) EnsureIndices(ctx context.Context) error {
	return r.dbClient.EnsureSchema(ctx, constants.SalesCollection, createSalesTable)
}

func (r *SQLSaleRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
