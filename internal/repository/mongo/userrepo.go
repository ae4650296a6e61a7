package mongo

import (
	"context"
	"fmt"

	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/repository/constants"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mongoUser is the stored shape of a user.
type mongoUser struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Email string             `bson:"email"`
	Nome  string             `bson:"nome"`
}

// MongoUserRepository implements UserRepository using the generic DBClient.
type MongoUserRepository struct {
	base
}

// NewMongoUserRepository creates a new MongoDB repository instance.
func NewMongoUserRepository(dbClient interfaces.DBClient) (*MongoUserRepository, error) {
	b, err := newBase(dbClient)
	if err != nil {
		return nil, err
	}
	return &MongoUserRepository{base: b}, nil
}

// Insert saves a new user and sets its IDUsuario.
func (r *MongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	id, err := r.insert(ctx, constants.UsersCollection, bson.M{
		"email": user.Email,
		"nome":  user.Nome,
	})
	if err != nil {
		return fmt.Errorf("failed to add user '%s' to MongoDB: %w", user.Email, err)
	}

	user.IDUsuario = id
	return nil
}

// FindByEmail retrieves a user by its natural key.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (models.Lookup[*models.User], error) {
	var stored mongoUser
	found, err := r.findOne(ctx, constants.UsersCollection, bson.M{constants.UserEmailField: email}, &stored)
	if err != nil {
		return models.NotFound[*models.User](), fmt.Errorf("failed to get user by email from MongoDB: %w", err)
	}
	if !found || stored.ID.IsZero() {
		return models.NotFound[*models.User](), nil
	}

	return models.Found(&models.User{
		IDUsuario: stored.ID.Hex(),
		Email:     stored.Email,
		Nome:      stored.Nome,
	}), nil
}

// EnsureIndices creates the unique email index.
func (r *MongoUserRepository) EnsureIndices(ctx context.Context) error {
	return r.ensureUnique(ctx, constants.UsersCollection, constants.UserEmailField)
}
