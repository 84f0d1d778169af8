package directory

import (
	"context"

	"dokta/models"

	"go.uber.org/zap"
)

// DemoDoctors is the directory loaded into an empty database.
var DemoDoctors = []models.Doctor{
	{Nom: "Dr. Marie Ngono", Telephone: "+237690123456", Specialite: "Généraliste", Experience: "8 ans", Tarif: 15000, Disponible: true},
	{Nom: "Dr. Jean Mbarga", Telephone: "+237691234567", Specialite: "Cardiologie", Experience: "12 ans", Tarif: 25000, Disponible: true},
	{Nom: "Dr. Grace Fouda", Telephone: "+237692345678", Specialite: "Pédiatrie", Experience: "6 ans", Tarif: 20000, Disponible: true},
	{Nom: "Dr. Paul Atangana", Telephone: "+237693456789", Specialite: "Dermatologie", Experience: "10 ans", Tarif: 18000, Disponible: true},
	{Nom: "Dr. Claudine Manga", Telephone: "+237694567890", Specialite: "Gynécologie", Experience: "9 ans", Tarif: 22000, Disponible: true},
}

func (s *DefaultDirectoryService) SeedDemoDoctors(ctx context.Context) (int, error) {
	n, err := s.Doctors.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	docs := make([]models.Doctor, len(DemoDoctors))
	copy(docs, DemoDoctors)
	if err := s.Doctors.CreateMany(ctx, docs); err != nil {
		return 0, err
	}
	s.Logger.Info("demo doctors seeded", zap.Int("count", len(docs)))
	return len(docs), nil
}
