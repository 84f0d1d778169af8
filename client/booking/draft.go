package booking

import (
	"errors"

	"dokta/client"
	"dokta/models"
	"dokta/phone"

	"github.com/go-playground/validator/v10"
)

// Patient is the person the consultation is for.
type Patient struct {
	// ID is the account the appointment is recorded under. It is empty for a
	// walk-in patient, whose record is created when paying.
	ID          string
	DependentID string
	Nom         string
	Age         int
	Telephone   string
}

// SelfPatient books for the account holder.
func SelfPatient(u *models.User) Patient {
	return Patient{ID: u.ID, Nom: u.Nom, Age: u.Age, Telephone: u.Telephone}
}

// DependentPatient books for one of the holder's dependents.
func DependentPatient(holder *models.User, d models.Dependent) Patient {
	tel := d.Telephone
	if tel == "" {
		tel = holder.Telephone
	}
	return Patient{ID: holder.ID, DependentID: d.ID, Nom: d.Nom, Age: d.Age, Telephone: tel}
}

// Draft accumulates everything the booking flow collects. Price is frozen
// when the consultation type is chosen.
type Draft struct {
	Doctor           *models.Doctor          `validate:"required"`
	ConsultationType models.ConsultationType `validate:"required,oneof=cabinet domicile teleconsultation"`
	Price            int                     `validate:"gte=0"`
	Patient          *Patient                `validate:"required"`

	Date  string `validate:"required,datetime=2006-01-02"`
	Heure string `validate:"required,catalog_slot"`

	PatientName  string `validate:"required"`
	PatientPhone string `validate:"required,cm_phone"`
	Motif        string

	PaymentMethod models.PaymentMethod `validate:"required,oneof=mtn_momo orange_money"`
	PaymentPhone  string               `validate:"required,cm_phone"`

	// Allocated while paying and reused by retries.
	IdempotencyKey   string
	AppointmentID    string
	PaymentReference string
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("cm_phone", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return phone.Valid(fl.Field().String())
	})
	validate.RegisterValidation("catalog_slot", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return models.InCatalog(fl.Field().String())
	})
}

// Fields a draft must carry before entering each state. Requirements are
// cumulative so a step cannot be reached by skipping an earlier one.
var stepFields = []struct {
	state  State
	fields []string
}{
	{StatePatientSelection, []string{"Doctor", "ConsultationType", "Price"}},
	{StateDateTimeSelection, []string{"Patient"}},
	{StatePatientDetailForm, []string{"Date", "Heure"}},
	{StatePaymentMethodSelection, []string{"PatientName", "PatientPhone"}},
	{StatePaymentPhoneEntry, []string{"PaymentMethod"}},
	{StatePaymentConfirmation, []string{"PaymentPhone"}},
}

func requiredFor(target State) []string {
	var fields []string
	for _, step := range stepFields {
		fields = append(fields, step.fields...)
		if step.state == target {
			break
		}
	}
	return fields
}

var fieldMessages = map[string]struct{ field, message string }{
	"Doctor":           {"doctor_id", "Aucun médecin sélectionné"},
	"ConsultationType": {"consultation_type", "Veuillez choisir un type de consultation"},
	"Price":            {"tarif", "Tarif invalide"},
	"Patient":          {"patient", "Veuillez sélectionner un patient"},
	"Date":             {"date", "Veuillez sélectionner une date"},
	"Heure":            {"heure", "Veuillez sélectionner un créneau horaire"},
	"PatientName":      {"patient_name", "Le nom du patient est requis"},
	"PatientPhone":     {"patient_phone", "Numéro de téléphone camerounais invalide (+237XXXXXXXXX)"},
	"PaymentMethod":    {"payment_method", "Veuillez sélectionner une méthode de paiement"},
	"PaymentPhone":     {"payment_phone", "Numéro de paiement camerounais invalide (+237XXXXXXXXX)"},
}

// check validates the fields required to enter target, or the whole draft
// when target is StatePaymentProcessing.
func (d *Draft) check(target State) error {
	var err error
	if target == StatePaymentProcessing {
		err = validate.Struct(d)
	} else {
		err = validate.StructPartial(d, requiredFor(target)...)
	}
	return firstValidationError(err)
}

func firstValidationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	first := ves[0]
	if m, ok := fieldMessages[first.Field()]; ok {
		return &client.ValidationError{Field: m.field, Message: m.message}
	}
	return &client.ValidationError{Field: first.Field(), Message: "Valeur invalide"}
}
