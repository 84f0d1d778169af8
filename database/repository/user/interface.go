package userRepo

import (
	"context"

	"dokta/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user record. A duplicate phone yields ErrDuplicatePhone.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByPhone retrieves a user by canonical phone number.
	GetByPhone(ctx context.Context, telephone string) (*models.User, error)
	// GetByTokenHash retrieves the user owning the active access token.
	GetByTokenHash(ctx context.Context, hash string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	// RecordLogin stores the active token hash and the login time.
	RecordLogin(ctx context.Context, id, tokenHash string) error
	ClearTokenHash(ctx context.Context, id string) error
	SetFCMToken(ctx context.Context, id, token, platform string) error
	AddDependent(ctx context.Context, id string, dep models.Dependent) error
	Count(ctx context.Context) (int64, error)
}

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	return &MongoUserRepo{coll: db.Collection("users")}
}
