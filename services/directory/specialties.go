package directory

import (
	"context"
	"time"

	"dokta/models"
	"dokta/utils"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const specialtiesTTL = 24 * time.Hour

func (s *DefaultDirectoryService) ListSpecialties(ctx context.Context) ([]models.Specialty, error) {
	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, utils.SpecialtiesCacheKey).Bytes()
		if err == nil {
			var cached []models.Specialty
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.Logger.Warn("ListSpecialties: cache read failed", zap.Error(err))
		}
	}

	out := make([]models.Specialty, 0, len(models.Specialties))
	for _, sp := range models.Specialties {
		out = append(out, models.Specialty{Value: sp, Label: sp})
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := s.Cache.Set(ctx, utils.SpecialtiesCacheKey, raw, specialtiesTTL).Err(); err != nil {
				s.Logger.Warn("ListSpecialties: cache write failed", zap.Error(err))
			}
		}
	}
	return out, nil
}
