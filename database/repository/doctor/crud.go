package doctorRepo

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

func (r *mongoDoctorRepo) Create(ctx context.Context, doctor *models.Doctor) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	if doctor.CreatedAt.IsZero() {
		doctor.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, doctor); err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *mongoDoctorRepo) CreateMany(ctx context.Context, doctors []models.Doctor) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs := make([]interface{}, len(doctors))
	for i := range doctors {
		if doctors[i].ID == "" {
			doctors[i].ID = uuid.New().String()
		}
		if doctors[i].CreatedAt.IsZero() {
			doctors[i].CreatedAt = time.Now().UTC()
		}
		docs[i] = doctors[i]
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert doctors: %w", err)
	}
	return nil
}

func (r *mongoDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.Doctor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch doctor %s: %w", id, err)
	}
	return &doc, nil
}

func (r *mongoDoctorRepo) Update(ctx context.Context, id string, upd models.DoctorProfileUpdate) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{}
	if upd.Nom != nil {
		set["nom"] = *upd.Nom
	}
	if upd.Telephone != nil {
		set["telephone"] = *upd.Telephone
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
	if upd.Disponible != nil {
		set["disponible"] = *upd.Disponible
	}
	if upd.Adresse != nil {
		set["adresse"] = *upd.Adresse
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.Doctor
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update doctor %s: %w", id, err)
	}
	return &doc, nil
}
