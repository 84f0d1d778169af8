package models

import "time"

// SlotCatalog is the fixed list of bookable half-hour times: a morning band
// (09:00-11:30) and an afternoon band (14:00-17:00 inclusive).
var SlotCatalog = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// MiddayCutoff splits the morning and afternoon bands.
const MiddayCutoff = "12:00"

// DateLayout is the wire layout for calendar days.
const DateLayout = "2006-01-02"

// InCatalog reports whether heure is one of the catalog times.
func InCatalog(heure string) bool {
	for _, h := range SlotCatalog {
		if h == heure {
			return true
		}
	}
	return false
}

// IsMorning reports whether an "HH:MM" time falls before the midday cutoff.
// Zero-padded times compare correctly as strings.
func IsMorning(heure string) bool {
	return heure < MiddayCutoff
}

// TimeSlot is one entry of a doctor's day.
type TimeSlot struct {
	Heure      string `json:"heure"`
	Disponible bool   `json:"disponible"`
}

// AvailabilityEntry is one (date, time, available) tuple as sent by
// PUT /api/doctors/{id}/availability and stored per doctor.
type AvailabilityEntry struct {
	DoctorID   string `bson:"doctor_id" json:"-"`
	Date       string `bson:"date" json:"date"`
	Heure      string `bson:"heure" json:"heure"`
	Disponible bool   `bson:"disponible" json:"disponible"`
}

// Cameroon keeps West Africa Time all year.
var WAT = time.FixedZone("WAT", 60*60)

// SlotTime resolves a (date, heure) pair to an instant in Cameroon local time.
func SlotTime(date, heure string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" 15:04", date+" "+heure, WAT)
}

// Today returns the current calendar day in Cameroon local time.
func Today(now time.Time) string {
	return now.In(WAT).Format(DateLayout)
}
