package constants

const (
	// Table/collection names
	UsersCollection    = "usuarios"
	ProductsCollection = "produtos"
	SalesCollection    = "vendas"

	// Surrogate key columns
	UserKeyColumn    = "id_usuario"
	ProductKeyColumn = "id_produto"
	SaleKeyColumn    = "id_venda"

	// Natural key fields
	UserEmailField   = "email"
	ProductNameField = "nome"
)

// KeyColumns maps each table to its surrogate key column.
func KeyColumns() map[string]string {
	return map[string]string{
		UsersCollection:    UserKeyColumn,
		ProductsCollection: ProductKeyColumn,
		SalesCollection:    SaleKeyColumn,
	}
}
