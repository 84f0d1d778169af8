// Package directory queries the doctor and specialty directory.
package directory

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"dokta/client"
	"dokta/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Filter narrows ListDoctors. Text is matched client-side.
type Filter struct {
	Specialite string
	Text       string
}

// PatientSource supplies the patients the account may book for, typically its dependents.
type PatientSource interface {
	Patients(ctx context.Context) ([]models.Dependent, error)
}

// Directory is the read-only directory client.
type Directory struct {
	api      *client.Client
	patients PatientSource
	logger   *zap.Logger

	mu          sync.Mutex
	specialties []models.Specialty
}

// Option configures a Directory.
type Option func(*Directory)

// WithPatients adds patient hits to Search.
func WithPatients(ps PatientSource) Option { return func(d *Directory) { d.patients = ps } }

func WithLogger(l *zap.Logger) Option { return func(d *Directory) { d.logger = l } }

func New(api *client.Client, opts ...Option) *Directory {
	d := &Directory{api: api, logger: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ListSpecialties returns the specialty list, fetched once per Directory.
// Failures are not cached.
func (d *Directory) ListSpecialties(ctx context.Context) ([]models.Specialty, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.specialties != nil {
		return d.specialties, nil
	}
	var specs []models.Specialty
	if err := d.api.Get(ctx, "/api/specialties", nil, &specs); err != nil {
		return nil, err
	}
	if specs == nil {
		specs = []models.Specialty{}
	}
	d.specialties = specs
	return specs, nil
}

// ListDoctors returns available doctors, optionally by specialty and free text.
func (d *Directory) ListDoctors(ctx context.Context, f Filter) ([]models.Doctor, error) {
	var q url.Values
	if f.Specialite != "" {
		q = url.Values{"specialite": {f.Specialite}}
	}
	var doctors []models.Doctor
	if err := d.api.Get(ctx, "/api/doctors", q, &doctors); err != nil {
		return nil, err
	}
	return FilterDoctors(doctors, f.Text), nil
}

// FilterDoctors keeps doctors whose name or specialty contains text, ignoring case.
func FilterDoctors(doctors []models.Doctor, text string) []models.Doctor {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return doctors
	}
	out := make([]models.Doctor, 0, len(doctors))
	for _, doc := range doctors {
		if strings.Contains(strings.ToLower(doc.Nom), needle) ||
			strings.Contains(strings.ToLower(doc.Specialite), needle) {
			out = append(out, doc)
		}
	}
	return out
}

// GetDoctor fetches one doctor. An unknown id is a *client.NotFoundError.
func (d *Directory) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var doc models.Doctor
	if err := d.api.Get(ctx, "/api/doctors/"+client.PathEscape(id), nil, &doc); err != nil {
		return nil, client.Classify(err, "doctor", id)
	}
	return &doc, nil
}

// Search queries doctors and specialties concurrently and merges the hits
// once both have answered. Patient hits come only from the PatientSource.
func (d *Directory) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.SearchResult{}, nil
	}

	var (
		doctors     []models.Doctor
		specialties []models.Specialty
		patients    []models.Dependent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doctors, err = d.ListDoctors(gctx, Filter{Text: q})
		return err
	})
	g.Go(func() error {
		var err error
		specialties, err = d.ListSpecialties(gctx)
		return err
	})
	if d.patients != nil {
		g.Go(func() error {
			ps, err := d.patients.Patients(gctx)
			if err != nil {
				// Patient hits are optional.
				d.logger.Warn("directory: patient source failed", zap.Error(err))
				return nil
			}
			patients = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(q)
	results := make([]models.SearchResult, 0, len(doctors)+len(specialties)+len(patients))
	for _, doc := range doctors {
		results = append(results, models.DoctorSearchResult(doc))
	}
	for _, sp := range specialties {
		if strings.Contains(strings.ToLower(sp.Label), lower) {
			results = append(results, models.SpecialtySearchResult(sp))
		}
	}
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Nom), lower) {
			results = append(results, models.DependentSearchResult(p))
		}
	}
	return results, nil
}

// RemoteSearch uses the backend's unified search.
func (d *Directory) RemoteSearch(ctx context.Context, query string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	if err := d.api.Get(ctx, "/api/search", url.Values{"q": {query}}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// DependentsSource adapts the account's dependents endpoint to PatientSource.
type DependentsSource struct {
	API *client.Client
}

func (s DependentsSource) Patients(ctx context.Context) ([]models.Dependent, error) {
	var deps []models.Dependent
	if err := s.API.Get(ctx, "/api/auth/dependents", nil, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}
