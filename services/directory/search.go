package directory

import (
	"context"
	"strings"

	"dokta/models"
)

const searchLimit = 20

func (s *DefaultDirectoryService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.SearchResult{}, nil
	}

	doctors, err := s.Doctors.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	specialties, err := s.ListSpecialties(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(doctors)+len(specialties))
	for _, d := range doctors {
		results = append(results, models.DoctorSearchResult(d))
	}
	lower := strings.ToLower(q)
	for _, sp := range specialties {
		if strings.Contains(strings.ToLower(sp.Label), lower) {
			results = append(results, models.SpecialtySearchResult(sp))
		}
	}
	return results, nil
}
