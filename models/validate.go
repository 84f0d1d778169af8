package models

import (
	"fmt"
	"strings"

	"dokta/phone"
)

// FieldError names the first input field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const MinPasswordLength = 6

// Normalize canonicalizes the phone number and trims free-text fields in place.
func (r *RegisterRequest) Normalize() {
	r.Nom = strings.TrimSpace(r.Nom)
	r.Telephone = phone.Normalize(r.Telephone)
	r.Ville = strings.TrimSpace(r.Ville)
	r.Experience = strings.TrimSpace(r.Experience)
}

// Validate applies the role-discriminated registration rules.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Nom) == "" {
		return &FieldError{"nom", "full name is required"}
	}
	if !phone.Valid(r.Telephone) {
		return &FieldError{"telephone", "invalid Cameroonian phone number, expected +237XXXXXXXXX"}
	}
	if len(r.MotDePasse) < MinPasswordLength {
		return &FieldError{"mot_de_passe", fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	switch r.TypeUtilisateur {
	case UserTypePatient:
		if err := ValidateAge(r.Age); err != nil {
			return err
		}
		if strings.TrimSpace(r.Ville) == "" {
			return &FieldError{"ville", "city is required"}
		}
	case UserTypeDoctor:
		if !IsKnownSpecialty(r.Specialite) {
			return &FieldError{"specialite", "unknown specialty"}
		}
		if strings.TrimSpace(r.Experience) == "" {
			return &FieldError{"experience", "experience is required"}
		}
		if r.Tarif < MinimumDoctorFee {
			return &FieldError{"tarif", fmt.Sprintf("fee must be at least %d FCFA", MinimumDoctorFee)}
		}
	default:
		return &FieldError{"type_utilisateur", "must be patient or medecin"}
	}
	return nil
}

// ValidateAge enforces the 1-120 range used for patients and dependents.
func ValidateAge(age int) error {
	if age < 1 || age > 120 {
		return &FieldError{"age", "age must be between 1 and 120"}
	}
	return nil
}
