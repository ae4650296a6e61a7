package models

import "fmt"

// Sale references a user by email and a product by name. The surrogate keys
// IDUsuario and IDProduto are filled in from the resolved dependencies right
// before insert; Quantidade, Valor and DataVenda are passed through untouched.
type Sale struct {
	IDVenda      string `bson:"-" mapstructure:"-" db:"id_venda"`
	IDUsuario    string `bson:"id_usuario" mapstructure:"-" db:"id_usuario"`
	IDProduto    string `bson:"id_produto" mapstructure:"-" db:"id_produto"`
	EmailUsuario string `bson:"email_usuario" mapstructure:"email_usuario" db:"email_usuario" validate:"required"`
	Produto      string `bson:"produto" mapstructure:"produto" db:"produto" validate:"required"`
	Quantidade   string `bson:"quantidade" mapstructure:"quantidade" db:"quantidade"`
	Valor        string `bson:"valor" mapstructure:"valor" db:"valor"`
	DataVenda    string `bson:"data_venda" mapstructure:"data_venda" db:"data_venda"`
}

// LoadFromRow populates the sale from a source row and reports whether the
// result is valid.
func (s *Sale) LoadFromRow(row Row) bool {
	*s = Sale{}
	if err := decodeRow(row, s); err != nil {
		return false
	}
	return s.Valid()
}

// Valid reports whether both dependency references are present.
func (s *Sale) Valid() bool {
	return isValid(s)
}

// Resolve copies the surrogate keys of the sale's user and product.
func (s *Sale) Resolve(user *User, product *Product) {
	s.IDUsuario = user.IDUsuario
	s.IDProduto = product.IDProduto
}

func (s *Sale) SurrogateKey() string {
	return s.IDVenda
}

// String identifies the sale in log output.
func (s *Sale) String() string {
	return fmt.Sprintf("user=%s product=%s", s.EmailUsuario, s.Produto)
}

// SaleColumns returns the columns a sale row may carry and the ones it must carry.
func SaleColumns() (columns []string, keyColumns []string) {
	return columnsOf(Sale{})
}
