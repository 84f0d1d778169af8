package booking

import "dokta/models"

// Instructions are shown with every confirmation.
var Instructions = []string{
	"Veuillez arriver 15 minutes avant l'heure du rendez-vous",
	"Apportez vos documents médicaux et une pièce d'identité",
	"En cas d'empêchement, contactez le cabinet 24h à l'avance",
}

// Receipt is the confirmation shown once the booking is paid.
type Receipt struct {
	AppointmentID    string
	Status           models.AppointmentStatus
	DoctorName       string
	Specialite       string
	Adresse          string
	MapsURL          string
	PatientName      string
	PatientPhone     string
	Date             string
	Heure            string
	ConsultationType models.ConsultationType
	Price            int
	Currency         string
	Operator         string
	PaymentReference string
	Instructions     []string
}

// receipt builds the view model. Caller holds c.mu.
func (c *Controller) receipt() *Receipt {
	d := c.draft
	r := &Receipt{
		AppointmentID:    d.AppointmentID,
		Status:           models.StatusConfirmed,
		DoctorName:       d.Doctor.Nom,
		Specialite:       d.Doctor.Specialite,
		Adresse:          d.Doctor.Adresse,
		MapsURL:          d.Doctor.MapsURL(),
		PatientName:      d.PatientName,
		PatientPhone:     d.PatientPhone,
		Date:             d.Date,
		Heure:            d.Heure,
		ConsultationType: d.ConsultationType,
		Price:            d.Price,
		Currency:         models.Currency,
		Operator:         d.PaymentMethod.DisplayName(),
		PaymentReference: d.PaymentReference,
		Instructions:     append([]string(nil), Instructions...),
	}
	if c.appt != nil && c.appt.Status != "" {
		r.Status = c.appt.Status
	}
	return r
}

// Receipt returns the confirmation once the booking is confirmed.
func (c *Controller) Receipt() (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateBookingConfirmed {
		return nil, ErrNotConfirmed
	}
	return c.receipt(), nil
}
