package main

import (
	"fmt"
	"time"

	"dokta/client"
	"dokta/client/booking"
	"dokta/client/directory"
	"dokta/client/notify"
	"dokta/client/slots"
	"dokta/models"

	"github.com/spf13/cobra"
)

type bookOptions struct {
	doctorID     string
	consultation string
	date         string
	heure        string
	dependentID  string
	name         string
	tel          string
	age          int
	motif        string
	operator     string
	payPhone     string
	remind       time.Duration
	payDelay     time.Duration
}

func bookCmd(a *app) *cobra.Command {
	var o bookOptions
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Réserver et payer une consultation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			doc, err := directory.New(a.api).GetDoctor(ctx, o.doctorID)
			if err != nil {
				return err
			}
			ctl := booking.New(a.api, slots.New(a.api, slots.WithLogger(a.logger)),
				booking.NewSimulatedProcessor(o.payDelay, a.logger), *doc, booking.WithLogger(a.logger))

			price, err := ctl.ChooseConsultation(models.ConsultationType(o.consultation))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s, consultation %s : %d %s\n", doc.Nom, o.consultation, price, models.Currency)

			if err := selectPatient(cmd, a, ctl, o); err != nil {
				return err
			}
			if err := ctl.ContinueToSchedule(); err != nil {
				return err
			}
			day, err := ctl.LoadSlots(ctx, o.date)
			if day == nil {
				return err
			}
			if day.Fallback() {
				return fmt.Errorf("créneaux indisponibles: %w", err)
			}
			if err := ctl.PickSlot(o.date, o.heure); err != nil {
				return err
			}
			if err := ctl.ConfirmSchedule(); err != nil {
				return err
			}
			d := ctl.Snapshot().Draft
			name, tel := d.PatientName, d.PatientPhone
			if o.name != "" {
				name = o.name
			}
			if o.tel != "" {
				tel = o.tel
			}
			if err := ctl.SubmitPatientDetails(name, tel, o.motif); err != nil {
				return err
			}
			if err := ctl.SelectPaymentMethod(models.PaymentMethod(o.operator)); err != nil {
				return err
			}
			if err := ctl.SubmitPaymentPhone(o.payPhone); err != nil {
				return err
			}

			fmt.Fprintln(out, "Paiement en cours...")
			rec, err := ctl.Pay(ctx)
			if err != nil {
				return err
			}
			printReceipt(cmd, rec)

			if o.remind > 0 {
				scheduleReminder(cmd, a, rec, *doc, o.remind)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.doctorID, "doctor", "", "identifiant du médecin")
	f.StringVar(&o.consultation, "type", string(models.ConsultationCabinet), "cabinet, domicile ou teleconsultation")
	f.StringVar(&o.date, "date", "", "date AAAA-MM-JJ")
	f.StringVar(&o.heure, "time", "", "créneau HH:MM")
	f.StringVar(&o.dependentID, "dependent", "", "réserver pour un proche (identifiant)")
	f.StringVar(&o.name, "name", "", "nom du patient (sans compte ou pour remplacer)")
	f.StringVar(&o.tel, "telephone", "", "téléphone du patient")
	f.IntVar(&o.age, "age", 0, "âge du patient (sans compte)")
	f.StringVar(&o.motif, "motif", "", "motif de consultation")
	f.StringVar(&o.operator, "operator", string(models.PaymentMTN), "mtn_momo ou orange_money")
	f.StringVar(&o.payPhone, "pay-phone", "", "numéro Mobile Money (défaut : téléphone du patient)")
	f.DurationVar(&o.remind, "remind-in", 0, "attendre et afficher un rappel local après cette durée")
	f.DurationVar(&o.payDelay, "payment-delay", 2*time.Second, "durée de la confirmation Mobile Money simulée")
	_ = f.MarkHidden("payment-delay")
	for _, name := range []string{"doctor", "date", "time"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func selectPatient(cmd *cobra.Command, a *app, ctl *booking.Controller, o bookOptions) error {
	cur := a.session.Current()
	if !cur.Authenticated() {
		if o.name == "" || o.tel == "" {
			return &client.ValidationError{Field: "patient", Message: "Sans compte, indiquez --name et --telephone."}
		}
		return ctl.SelectPatient(booking.Patient{Nom: o.name, Age: o.age, Telephone: o.tel})
	}
	if o.dependentID == "" {
		return ctl.SelectPatient(booking.SelfPatient(cur.User))
	}
	deps, err := directory.DependentsSource{API: a.api}.Patients(cmd.Context())
	if err != nil {
		return err
	}
	for _, d := range deps {
		if d.ID == o.dependentID {
			return ctl.SelectPatient(booking.DependentPatient(cur.User, d))
		}
	}
	return &client.NotFoundError{Resource: "dependent", ID: o.dependentID}
}

func printReceipt(cmd *cobra.Command, r *booking.Receipt) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Rendez-vous confirmé !")
	fmt.Fprintf(out, "  Numéro      : %s\n", r.AppointmentID)
	fmt.Fprintf(out, "  Médecin     : %s (%s)\n", r.DoctorName, r.Specialite)
	fmt.Fprintf(out, "  Patient     : %s, %s\n", r.PatientName, r.PatientPhone)
	fmt.Fprintf(out, "  Date        : %s à %s\n", r.Date, r.Heure)
	fmt.Fprintf(out, "  Type        : %s\n", r.ConsultationType)
	fmt.Fprintf(out, "  Montant payé: %d %s via %s (réf. %s)\n", r.Price, r.Currency, r.Operator, r.PaymentReference)
	if r.MapsURL != "" {
		fmt.Fprintf(out, "  Itinéraire  : %s\n", r.MapsURL)
	}
	fmt.Fprintln(out, "Instructions importantes :")
	for _, line := range r.Instructions {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}

func scheduleReminder(cmd *cobra.Command, a *app, r *booking.Receipt, doc models.Doctor, after time.Duration) {
	out := cmd.OutOrStdout()
	fired := make(chan models.ReminderPayload, 1)
	reg := notify.New(a.api, nil, nil, notify.WithLogger(a.logger), notify.WithDeliver(func(p models.ReminderPayload) { fired <- p }))
	appt := models.Appointment{ID: r.AppointmentID, Date: r.Date, Heure: r.Heure, ConsultationType: r.ConsultationType}
	reg.ScheduleLocalReminder(after, notify.AppointmentReminder(appt, doc))

	select {
	case p := <-fired:
		fmt.Fprintf(out, "%s : %s\n", p.Title, p.Body)
		if p.MapsURL != "" {
			fmt.Fprintln(out, p.MapsURL)
		}
	case <-cmd.Context().Done():
		reg.CancelAll()
	}
}

func cancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Annuler un rendez-vous en attente ou confirmé",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appt, err := booking.Cancel(cmd.Context(), a.api, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendez-vous %s annulé (%s à %s).\n", appt.ID, appt.Date, appt.Heure)
			return nil
		},
	}
}
