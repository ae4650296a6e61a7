package interfaces

import (
	"context"

	"github.com/haguru/recordmigrator/internal/models"
)

// UserRepository defines the contract for storing and retrieving users.
// It performs no existence check of its own before inserting.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.Lookup[*models.User], error)
	// Insert stores the user and sets its IDUsuario on success.
	Insert(ctx context.Context, user *models.User) error
	EnsureIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// ProductRepository defines the contract for storing and retrieving products.
type ProductRepository interface {
	FindByName(ctx context.Context, name string) (models.Lookup[*models.Product], error)
	// Insert stores the product and sets its IDProduto on success.
	Insert(ctx context.Context, product *models.Product) error
	EnsureIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// SaleRepository stores sales. Sales have no natural key and are never looked up.
type SaleRepository interface {
	// Insert stores the sale and sets its IDVenda on success.
	Insert(ctx context.Context, sale *models.Sale) error
	EnsureIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
