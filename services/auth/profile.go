package auth

import (
	"context"
	"fmt"
	"strings"

	"dokta/models"
	"dokta/phone"
	"dokta/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultAuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *DefaultAuthService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Nom != nil && strings.TrimSpace(*upd.Nom) == "" {
		return nil, services.NewValidationError("nom", "name cannot be empty")
	}
	if upd.Age != nil {
		if err := models.ValidateAge(*upd.Age); err != nil {
			return nil, services.NewValidationError("age", err.Error())
		}
	}
	if upd.Tarif != nil && *upd.Tarif < models.MinimumDoctorFee {
		return nil, services.NewValidationError("tarif", fmt.Sprintf("fee must be at least %d FCFA", models.MinimumDoctorFee))
	}
	if upd.Specialite != nil && !models.IsKnownSpecialty(*upd.Specialite) {
		return nil, services.NewValidationError("specialite", "unknown specialty")
	}

	u, err := s.Users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	if u.Type == models.UserTypeDoctor {
		docUpd := models.DoctorProfileUpdate{
			Nom:        upd.Nom,
			Specialite: upd.Specialite,
			Experience: upd.Experience,
			Tarif:      upd.Tarif,
			Diplomes:   upd.Diplomes,
		}
		if _, err := s.Doctors.Update(ctx, userID, docUpd); err != nil {
			s.Logger.Error("UpdateProfile: failed to sync directory entry", zap.String("userID", userID), zap.Error(err))
		}
	}
	return u, nil
}

func (s *DefaultAuthService) Dependents(ctx context.Context, userID string) ([]models.Dependent, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Dependents == nil {
		return []models.Dependent{}, nil
	}
	return u.Dependents, nil
}

func (s *DefaultAuthService) AddDependent(ctx context.Context, userID string, req models.DependentCreate) (*models.Dependent, error) {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return nil, services.NewValidationError("nom", "name is required")
	}
	if err := models.ValidateAge(req.Age); err != nil {
		return nil, services.NewValidationError("age", err.Error())
	}
	if strings.TrimSpace(req.Lien) == "" {
		return nil, services.NewValidationError("lien", "relationship is required")
	}

	tel := ""
	if strings.TrimSpace(req.Telephone) != "" {
		parsed, err := phone.Parse(req.Telephone)
		if err != nil {
			return nil, services.NewValidationError("telephone", err.Error())
		}
		tel = parsed
	}

	dep := models.Dependent{
		ID:        uuid.New().String(),
		Nom:       nom,
		Age:       req.Age,
		Lien:      strings.TrimSpace(req.Lien),
		Telephone: tel,
	}
	if err := s.Users.AddDependent(ctx, userID, dep); err != nil {
		return nil, err
	}
	return &dep, nil
}
