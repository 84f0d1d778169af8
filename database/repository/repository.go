package repository

import (
	"context"
	"fmt"

	appointmentRepo "dokta/database/repository/appointment"
	availabilityRepo "dokta/database/repository/availability"
	doctorRepo "dokta/database/repository/doctor"
	userRepo "dokta/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

type DoctorRepository = doctorRepo.DoctorRepository

type UserRepository = userRepo.UserRepository

type AppointmentRepository = appointmentRepo.AppointmentRepository

type AvailabilityRepository = availabilityRepo.AvailabilityRepository

// Indexer is implemented by repositories that own Mongo indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Repositories bundles every collection-backed repository.
type Repositories struct {
	Doctors      DoctorRepository
	Users        UserRepository
	Appointments AppointmentRepository
	Availability AvailabilityRepository
}

// NewMongoRepositories wires all repositories against db.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Doctors:      doctorRepo.NewMongoDoctorRepo(db),
		Users:        userRepo.NewMongoUserRepo(db),
		Appointments: appointmentRepo.NewMongoAppointmentRepo(db),
		Availability: availabilityRepo.NewMongoAvailabilityRepo(db),
	}
}

// EnsureIndexes creates the indexes of every repository that declares some.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for _, repo := range []interface{}{r.Doctors, r.Users, r.Appointments, r.Availability} {
		idx, ok := repo.(Indexer)
		if !ok {
			continue
		}
		if err := idx.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}
