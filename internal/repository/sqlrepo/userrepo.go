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

// SQLUserRepository implements UserRepository for PostgreSQL and SQLite.
type SQLUserRepository struct {
	dbClient *sqldb.SQLDatabaseClient
}

// NewSQLUserRepository creates a new SQL user repository instance.
func NewSQLUserRepository(dbClient *sqldb.SQLDatabaseClient) (*SQLUserRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	return &SQLUserRepository{dbClient: dbClient}, nil
}

// Insert saves a new user and sets its IDUsuario.
func (r *SQLUserRepository) Insert(ctx context.Context, user *models.User) error {
	doc := map[string]interface{}{
		"email": user.Email,
		"nome":  user.Nome,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.UsersCollection, doc)
	if err != nil {
		return fmt.Errorf("failed to add user '%s' to %s: %w", user.Email, r.dbClient.Dialect().Name, translateInsertError(err))
	}

	user.IDUsuario = fmt.Sprint(insertedID)
	return nil
}

// FindByEmail looks a user up by its natural key.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (models.Lookup[*models.User], error) {
	var user models.User
	filter := map[string]interface{}{constants.UserEmailField: email}
	err := r.dbClient.FindOne(ctx, constants.UsersCollection, filter, &user)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoDocument) {
			return models.NotFound[*models.User](), nil
		}
		return models.NotFound[*models.User](), fmt.Errorf("failed to get user by email from %s: %w", r.dbClient.Dialect().Name, err)
	}
	return models.Found(&user), nil
}

// EnsureIndices creates the users table with its unique email.
func (r *SQLUserRepository) EnsureIndices(ctx context.Context) error {
	return r.dbClient.EnsureSchema(ctx, constants.UsersCollection, createUsersTable)
}

// Close closes the database connection.
func (r *SQLUserRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
