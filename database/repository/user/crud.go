package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dokta/database"
	"dokta/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicatePhone is returned when the telephone is already registered.
var ErrDuplicatePhone = errors.New("telephone already registered")

func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoUserRepo) GetByPhone(ctx context.Context, telephone string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"telephone": telephone})
}

func (r *MongoUserRepo) GetByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"token_hash": hash})
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Nom != nil {
		set["nom"] = *upd.Nom
	}
	if upd.Age != nil {
		set["age"] = *upd.Age
	}
	if upd.Ville != nil {
		set["ville"] = *upd.Ville
	}
	if upd.Specialite != nil {
		set["specialite"] = *upd.Specialite
	}
	if upd.Experience != nil {
		set["experience"] = *upd.Experience
	}
	if upd.Tarif != nil {
		set["tarif"] = *upd.Tarif
	}
	if upd.Diplomes != nil {
		set["diplomes"] = *upd.Diplomes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return &user, nil
}

func (r *MongoUserRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepo) RecordLogin(ctx context.Context, id, tokenHash string) error {
	now := time.Now().UTC()
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"token_hash": tokenHash, "last_login": now}})
}

func (r *MongoUserRepo) ClearTokenHash(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$unset": bson.M{"token_hash": ""}})
}

func (r *MongoUserRepo) SetFCMToken(ctx context.Context, id, token, platform string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"fcm_token":  token,
		"platform":   platform,
		"updated_at": time.Now().UTC(),
	}})
}

func (r *MongoUserRepo) AddDependent(ctx context.Context, id string, dep models.Dependent) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"dependents": dep},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *MongoUserRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
