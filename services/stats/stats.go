package stats

import (
	"context"
	"time"

	appointmentRepo "dokta/database/repository/appointment"
	doctorRepo "dokta/database/repository/doctor"
	userRepo "dokta/database/repository/user"
	"dokta/models"

	"golang.org/x/sync/errgroup"
)

// StatsService serves the read-only dashboards.
type StatsService interface {
	DoctorDashboard(ctx context.Context, doctorID string) (*models.DoctorDashboard, error)
	DoctorPatients(ctx context.Context, doctorID string) ([]models.PatientSummary, error)
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// DefaultStatsService is the production implementation.
type DefaultStatsService struct {
	Doctors      doctorRepo.DoctorRepository
	Users        userRepo.UserRepository
	Appointments appointmentRepo.AppointmentRepository
	Now          func() time.Time
}

func NewDefaultStatsService(doctors doctorRepo.DoctorRepository, users userRepo.UserRepository, appts appointmentRepo.AppointmentRepository) *DefaultStatsService {
	return &DefaultStatsService{Doctors: doctors, Users: users, Appointments: appts, Now: time.Now}
}

func (s *DefaultStatsService) DoctorDashboard(ctx context.Context, doctorID string) (*models.DoctorDashboard, error) {
	today := models.Today(s.Now())
	month := today[:7]

	var (
		doctor *models.Doctor
		stats  *models.DashboardStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doctor, err = s.Doctors.GetByID(gctx, doctorID)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.Appointments.DashboardStats(gctx, doctorID, today, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &models.DoctorDashboard{Doctor: *doctor, Stats: *stats}, nil
}

func (s *DefaultStatsService) DoctorPatients(ctx context.Context, doctorID string) ([]models.PatientSummary, error) {
	if _, err := s.Doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.Appointments.PatientRoster(ctx, doctorID)
}

func (s *DefaultStatsService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	today := models.Today(s.Now())
	var doctors, users, appts, todays int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { doctors, err = s.Doctors.Count(gctx); return })
	g.Go(func() (err error) { users, err = s.Users.Count(gctx); return })
	g.Go(func() (err error) { appts, err = s.Appointments.Count(gctx, ""); return })
	g.Go(func() (err error) { todays, err = s.Appointments.Count(gctx, today); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &models.PlatformStats{
		Doctors:           int(doctors),
		Users:             int(users),
		Appointments:      int(appts),
		TodayAppointments: int(todays),
	}, nil
}
