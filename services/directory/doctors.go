package directory

import (
	"context"
	"strings"

	"dokta/models"
	"dokta/phone"
	"dokta/services"

	"go.uber.org/zap"
)

func (s *DefaultDirectoryService) ListDoctors(ctx context.Context, specialite string) ([]models.Doctor, error) {
	if specialite != "" && !models.IsKnownSpecialty(specialite) {
		return nil, services.NewValidationError("specialite", "unknown specialty")
	}
	return s.Doctors.List(ctx, specialite)
}

func (s *DefaultDirectoryService) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	return s.Doctors.GetByID(ctx, id)
}

func (s *DefaultDirectoryService) CreateDoctor(ctx context.Context, req models.DoctorCreate) (*models.Doctor, error) {
	if strings.TrimSpace(req.Nom) == "" {
		return nil, services.NewValidationError("nom", "name is required")
	}
	tel, err := phone.Parse(req.Telephone)
	if err != nil {
		return nil, services.NewValidationError("telephone", err.Error())
	}
	if !models.IsKnownSpecialty(req.Specialite) {
		return nil, services.NewValidationError("specialite", "unknown specialty")
	}
	if req.Tarif < 0 {
		return nil, services.NewValidationError("tarif", "fee cannot be negative")
	}

	doc := &models.Doctor{
		Nom:        strings.TrimSpace(req.Nom),
		Telephone:  tel,
		Specialite: req.Specialite,
		Experience: req.Experience,
		Tarif:      req.Tarif,
		Diplomes:   req.Diplomes,
		Disponible: true,
	}
	if err := s.Doctors.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.Logger.Info("doctor created", zap.String("doctorID", doc.ID))
	return doc, nil
}

func (s *DefaultDirectoryService) UpdateDoctorProfile(ctx context.Context, id string, upd models.DoctorProfileUpdate) (*models.Doctor, error) {
	if upd.Nom != nil && strings.TrimSpace(*upd.Nom) == "" {
		return nil, services.NewValidationError("nom", "name cannot be empty")
	}
	if upd.Telephone != nil {
		tel, err := phone.Parse(*upd.Telephone)
		if err != nil {
			return nil, services.NewValidationError("telephone", err.Error())
		}
		upd.Telephone = &tel
	}
	if upd.Specialite != nil && !models.IsKnownSpecialty(*upd.Specialite) {
		return nil, services.NewValidationError("specialite", "unknown specialty")
	}
	if upd.Tarif != nil && *upd.Tarif < models.MinimumDoctorFee {
		return nil, services.NewValidationError("tarif", "fee below the minimum")
	}
	return s.Doctors.Update(ctx, id, upd)
}
