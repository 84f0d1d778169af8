package models

import "fmt"

// SearchKind tags a unified search hit.
type SearchKind string

const (
	SearchDoctor    SearchKind = "doctor"
	SearchSpecialty SearchKind = "specialty"
	SearchPatient   SearchKind = "patient"
)

// SearchResult is one hit of the unified search.
type SearchResult struct {
	Kind     SearchKind `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Metadata string     `json:"metadata,omitempty"`
}

// DoctorMetadata renders the "<fee> FCFA • <experience>" line shown under a doctor hit.
func DoctorMetadata(d Doctor) string {
	return fmt.Sprintf("%d %s • %s", d.Tarif, Currency, d.Experience)
}

// DoctorSearchResult converts a doctor to a search hit.
func DoctorSearchResult(d Doctor) SearchResult {
	return SearchResult{
		Kind:     SearchDoctor,
		ID:       d.ID,
		Title:    d.Nom,
		Subtitle: d.Specialite,
		Metadata: DoctorMetadata(d),
	}
}

// SpecialtySearchResult converts a specialty to a search hit.
func SpecialtySearchResult(sp Specialty) SearchResult {
	return SearchResult{
		Kind:     SearchSpecialty,
		ID:       sp.Value,
		Title:    sp.Label,
		Subtitle: "Spécialité médicale",
	}
}

// DependentSearchResult converts one of the account's dependents to a search hit.
func DependentSearchResult(d Dependent) SearchResult {
	return SearchResult{
		Kind:     SearchPatient,
		ID:       d.ID,
		Title:    d.Nom,
		Subtitle: d.Lien,
		Metadata: fmt.Sprintf("%d ans", d.Age),
	}
}
