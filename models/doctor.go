package models

import (
	"fmt"
	"time"
)

// Doctor is a directory entry. ID is the join key for availability rows and appointments.
type Doctor struct {
	ID         string    `bson:"id" json:"id"`
	Nom        string    `bson:"nom" json:"nom"`
	Telephone  string    `bson:"telephone" json:"telephone"`
	Specialite string    `bson:"specialite" json:"specialite"`
	Experience string    `bson:"experience" json:"experience"` // e.g. "8 ans"
	Tarif      int       `bson:"tarif" json:"tarif"`           // base fee in FCFA
	Disponible bool      `bson:"disponible" json:"disponible"`
	Diplomes   string    `bson:"diplomes,omitempty" json:"diplomes,omitempty"`
	Adresse    string    `bson:"adresse,omitempty" json:"adresse,omitempty"`
	Latitude   float64   `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude  float64   `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// DoctorCreate is the payload accepted by POST /api/doctors.
type DoctorCreate struct {
	Nom        string `json:"nom" binding:"required"`
	Telephone  string `json:"telephone" binding:"required"`
	Specialite string `json:"specialite" binding:"required"`
	Experience string `json:"experience" binding:"required"`
	Tarif      int    `json:"tarif" binding:"gte=0"`
	Diplomes   string `json:"diplomes,omitempty"`
}

// DoctorProfileUpdate is the partial payload of PUT /api/doctors/{id}/profile.
// Nil fields are left untouched.
type DoctorProfileUpdate struct {
	Nom        *string `json:"nom,omitempty"`
	Telephone  *string `json:"telephone,omitempty"`
	Specialite *string `json:"specialite,omitempty"`
	Experience *string `json:"experience,omitempty"`
	Tarif      *int    `json:"tarif,omitempty"`
	Diplomes   *string `json:"diplomes,omitempty"`
	Disponible *bool   `json:"disponible,omitempty"`
	Adresse    *string `json:"adresse,omitempty"`
}

// Specialty is one entry of the specialty reference list.
type Specialty struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Specialties is the fixed specialty catalog.
var Specialties = []string{
	"Généraliste",
	"Cardiologie",
	"Dermatologie",
	"Pédiatrie",
	"Gynécologie",
	"Neurologie",
	"Orthopédie",
	"Ophtalmologie",
}

// IsKnownSpecialty reports whether s is part of the catalog.
func IsKnownSpecialty(s string) bool {
	for _, sp := range Specialties {
		if sp == s {
			return true
		}
	}
	return false
}

// MinimumDoctorFee is the lowest base fee a doctor may register with, in FCFA.
const MinimumDoctorFee = 1000

// MapsURL links to the practice location, or "" when it is unknown.
func (d Doctor) MapsURL() string {
	if d.Latitude == 0 && d.Longitude == 0 {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", d.Latitude, d.Longitude)
}
