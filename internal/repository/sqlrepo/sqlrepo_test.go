package sqlrepo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/repository/constants"
	"github.com/haguru/recordmigrator/pkg/databases/sqldb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos struct {
	users    *SQLUserRepository
	products *SQLProductRepository
	sales    *SQLSaleRepository
}

func newTestRepos(t *testing.T) repos {
	t.Helper()
	ctx := context.Background()

	client := sqldb.NewSQLDatabaseClient(sqldb.SQLite, sqldb.Options{KeyColumns: constants.KeyColumns()})
	require.NoError(t, client.Connect(ctx, filepath.Join(t.TempDir(), "migration.db")))
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	users, err := NewSQLUserRepository(client)
	require.NoError(t, err)
	products, err := NewSQLProductRepository(client)
	require.NoError(t, err)
	sales, err := NewSQLSaleRepository(client)
	require.NoError(t, err)

	require.NoError(t, users.EnsureIndices(ctx))
	require.NoError(t, products.EnsureIndices(ctx))
	require.NoError(t, sales.EnsureIndices(ctx))
	// idempotent
	require.NoError(t, users.EnsureIndices(ctx))

	return repos{users: users, products: products, sales: sales}
}

func TestNewRepositories_NilClient(t *testing.T) {
	_, err := NewSQLUserRepository(nil)
	assert.Error(t, err)
	_, err = NewSQLProductRepository(nil)
	assert.Error(t, err)
	_, err = NewSQLSaleRepository(nil)
	assert.Error(t, err)
}

func TestSQLUserRepository_InsertAndFind(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	lookup, err := r.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, lookup.Found)

	user := models.NewUser("a@x.com", "Ana")
	require.NoError(t, r.users.Insert(ctx, user))
	require.NotEmpty(t, user.IDUsuario)

	lookup, err = r.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, lookup.Found)
	assert.Equal(t, *user, *lookup.Record)

	lookup, err = r.users.FindByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.False(t, lookup.Found, "email lookup is case sensitive")
}

func TestSQLUserRepository_DuplicateEmail(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, r.users.Insert(ctx, models.NewUser("a@x.com", "Ana")))

	dup := models.NewUser("a@x.com", "Other")
	err := r.users.Insert(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)
	assert.Empty(t, dup.IDUsuario)
}

func TestSQLProductRepository_InsertAndFind(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	product := &models.Product{Nome: "Widget", Descricao: "blue", Preco: "19.90"}
	require.NoError(t, r.products.Insert(ctx, product))

	lookup, err := r.products.FindByName(ctx, "Widget")
	require.NoError(t, err)
	require.True(t, lookup.Found)
	assert.Equal(t, product.IDProduto, lookup.Record.IDProduto)
	assert.Equal(t, "19.90", lookup.Record.Preco)

	err = r.products.Insert(ctx, &models.Product{Nome: "Widget"})
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

	lookup, err = r.products.FindByName(ctx, "Gadget")
	require.NoError(t, err)
	assert.False(t, lookup.Found)
}

func TestSQLSaleRepository_Insert(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	user := models.NewUser("a@x.com", "Ana")
	require.NoError(t, r.users.Insert(ctx, user))
	product := models.NewProduct("Widget")
	require.NoError(t, r.products.Insert(ctx, product))

	sale := &models.Sale{EmailUsuario: "a@x.com", Produto: "Widget", Quantidade: "2"}
	sale.Resolve(user, product)
	require.NoError(t, r.sales.Insert(ctx, sale))
	assert.NotEmpty(t, sale.IDVenda)

	// sales are append-only events
	again := *sale
	again.IDVenda = ""
	require.NoError(t, r.sales.Insert(ctx, &again))
	assert.NotEqual(t, sale.IDVenda, again.IDVenda)
}

func TestSQLSaleRepository_ForeignKeys(t *testing.T) {
	r := newTestRepos(t)

	sale := &models.Sale{IDUsuario: "missing", IDProduto: "missing", EmailUsuario: "a@x.com", Produto: "Widget"}
	err := r.sales.Insert(context.Background(), sale)
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrDuplicateKey)
	assert.Empty(t, sale.IDVenda)
}
