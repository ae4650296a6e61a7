package models

// User represents a migrated user. Email is the natural key; IDUsuario is
// assigned by the store on insert.
type User struct {
	IDUsuario string `bson:"-" mapstructure:"-" db:"id_usuario"`
	Email     string `bson:"email" mapstructure:"email" db:"email" validate:"required"`
	Nome      string `bson:"nome" mapstructure:"nome" db:"nome"`
}

// NewUser creates a new User instance with the given email and name.
// Note: No validation is performed here.
func NewUser(email, nome string) *User {
	return &User{
		Email: email,
		Nome:  nome,
	}
}

// LoadFromRow populates the user from a source row and reports whether the
// result is valid. A row with cells the user cannot bind is invalid.
func (u *User) LoadFromRow(row Row) bool {
	*u = User{}
	if err := decodeRow(row, u); err != nil {
		return false
	}
	return u.Valid()
}

// Valid reports whether the user carries its natural key.
func (u *User) Valid() bool {
	return isValid(u)
}

// NaturalKey returns the email.
func (u *User) NaturalKey() string {
	return u.Email
}

// SurrogateKey returns the store-assigned key, empty until inserted or looked up.
func (u *User) SurrogateKey() string {
	return u.IDUsuario
}

// UserColumns returns the columns a user row may carry and the ones it must carry.
func UserColumns() (columns []string, keyColumns []string) {
	return columnsOf(User{})
}
