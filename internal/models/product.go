package models

// Product represents a migrated product, identified by its name.
type Product struct {
	IDProduto string `bson:"-" mapstructure:"-" db:"id_produto"`
	Nome      string `bson:"nome" mapstructure:"nome" db:"nome" validate:"required"`
	Descricao string `bson:"descricao" mapstructure:"descricao" db:"descricao"`
	Preco     string `bson:"preco" mapstructure:"preco" db:"preco"`
}

// NewProduct creates a new Product with the given name.
func NewProduct(nome string) *Product {
	return &Product{Nome: nome}
}

// LoadFromRow populates the product from a source row and reports whether the
// result is valid.
func (p *Product) LoadFromRow(row Row) bool {
	*p = Product{}
	if err := decodeRow(row, p); err != nil {
		return false
	}
	return p.Valid()
}

func (p *Product) Valid() bool {
	return isValid(p)
}

func (p *Product) NaturalKey() string {
	return p.Nome
}

func (p *Product) SurrogateKey() string {
	return p.IDProduto
}

// ProductColumns returns the columns a product row may carry and the ones it must carry.
func ProductColumns() (columns []string, keyColumns []string) {
	return columnsOf(Product{})
}
