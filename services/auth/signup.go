package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userRepo "dokta/database/repository/user"
	"dokta/models"
	"dokta/phone"
	"dokta/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		var fe *models.FieldError
		if errors.As(err, &fe) {
			return nil, services.NewValidationError(fe.Field, fe.Message)
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.MotDePasse), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Nom:          req.Nom,
		Telephone:    req.Telephone,
		Type:         req.TypeUtilisateur,
		PasswordHash: string(hash),
	}
	if req.TypeUtilisateur == models.UserTypePatient {
		u.Age = req.Age
		u.Ville = req.Ville
	} else {
		u.Specialite = req.Specialite
		u.Experience = req.Experience
		u.Tarif = req.Tarif
		u.Diplomes = req.Diplomes
	}

	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, userRepo.ErrDuplicatePhone) {
			return nil, services.NewConflictError(services.CodePhoneTaken, "a user with this phone number already exists")
		}
		return nil, err
	}

	// A doctor account is listed in the directory under the same id.
	if u.Type == models.UserTypeDoctor {
		doc := &models.Doctor{
			ID:         u.ID,
			Nom:        u.Nom,
			Telephone:  u.Telephone,
			Specialite: u.Specialite,
			Experience: u.Experience,
			Tarif:      u.Tarif,
			Diplomes:   u.Diplomes,
			Disponible: true,
		}
		if err := s.Doctors.Create(ctx, doc); err != nil {
			s.Logger.Error("Register: failed to create directory entry", zap.String("userID", u.ID), zap.Error(err))
			return nil, err
		}
	}

	s.Logger.Info("user registered", zap.String("userID", u.ID), zap.String("type", string(u.Type)))
	return s.issueToken(ctx, u)
}

func (s *DefaultAuthService) CreateUser(ctx context.Context, req models.UserCreate, key string) (*models.User, error) {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return nil, services.NewValidationError("nom", "name is required")
	}
	tel, err := phone.Parse(req.Telephone)
	if err != nil {
		return nil, services.NewValidationError("telephone", err.Error())
	}
	typ := req.Type
	if typ == "" {
		typ = models.UserTypePatient
	}
	if !typ.Valid() {
		return nil, services.NewValidationError("type", "must be patient or medecin")
	}

	u := &models.User{Nom: nom, Telephone: tel, Type: typ, CreationKey: key}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, userRepo.ErrDuplicatePhone) {
			if existing, getErr := s.Users.GetByPhone(ctx, tel); getErr == nil && key != "" && existing.CreationKey == key {
				s.Logger.Info("CreateUser: replayed", zap.String("userID", existing.ID))
				return existing, nil
			}
			return nil, services.NewConflictError(services.CodePhoneTaken, "a user with this phone number already exists")
		}
		return nil, err
	}
	return u, nil
}

func (s *DefaultAuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.Users.GetByID(ctx, id)
}
