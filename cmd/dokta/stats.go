package main

import (
	"fmt"
	"text/tabwriter"

	"dokta/client"
	"dokta/client/stats"
	"dokta/models"

	"github.com/spf13/cobra"
)

// doctorID defaults to the signed-in doctor.
func doctorID(a *app, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cur := a.session.Current()
	if cur.Authenticated() && cur.User.Type == models.UserTypeDoctor {
		return cur.User.ID, nil
	}
	return "", &client.ValidationError{Field: "doctor_id", Message: "Indiquez l'identifiant du médecin."}
}

func statsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Statistiques de la plateforme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := stats.New(a.api, a.logger).PlatformStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Médecins : %d\nUtilisateurs : %d\nRendez-vous : %d (dont %d aujourd'hui)\n",
				st.Doctors, st.Users, st.Appointments, st.TodayAppointments)
			return nil
		},
	}
	cmd.AddCommand(dashboardCmd(a), patientsCmd(a), appointmentsCmd(a), statusCmd(a))
	return cmd
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [doctor-id]",
		Short: "Tableau de bord du médecin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := doctorID(a, args)
			if err != nil {
				return err
			}
			dash, err := stats.New(a.api, a.logger).DoctorDashboard(cmd.Context(), id)
			if err != nil {
				return err
			}
			s := dash.Stats
			fmt.Fprintf(cmd.OutOrStdout(),
				"%s\nTotal : %d  Aujourd'hui : %d  Confirmés : %d  En attente : %d\nCe mois : %d rendez-vous, %d %s\n",
				dash.Doctor.Nom, s.TotalAppointments, s.TodayAppointments, s.ConfirmedAppointments,
				s.PendingAppointments, s.MonthlyAppointments, s.MonthlyRevenue, models.Currency)
			return nil
		},
	}
}

func patientsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patients [doctor-id]",
		Short: "Patients du médecin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := doctorID(a, args)
			if err != nil {
				return err
			}
			roster, err := stats.New(a.api, a.logger).DoctorPatients(cmd.Context(), id)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NOM\tTÉLÉPHONE\tVISITES\tDERNIER RDV")
			for _, p := range roster {
				last := "-"
				if p.LastAppointment != nil {
					last = *p.LastAppointment
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Nom, p.Telephone, p.AppointmentCount, last)
			}
			return tw.Flush()
		},
	}
}

func appointmentsCmd(a *app) *cobra.Command {
	var date, status string
	var all bool
	cmd := &cobra.Command{
		Use:   "appointments [doctor-id]",
		Short: "Rendez-vous du médecin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := stats.New(a.api, a.logger)
			var (
				appts []models.Appointment
				err   error
			)
			if all {
				appts, err = v.AllAppointments(cmd.Context())
			} else {
				var id string
				if id, err = doctorID(a, args); err != nil {
					return err
				}
				appts, err = v.DoctorAppointments(cmd.Context(), id, date, models.AppointmentStatus(status))
			}
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tHEURE\tPATIENT\tTYPE\tSTATUT\tTARIF")
			for _, ap := range appts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n", ap.ID, ap.Date, ap.Heure, ap.PatientName, ap.ConsultationType, ap.Status, ap.Tarif)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "filtrer par date")
	cmd.Flags().StringVar(&status, "status", "", "en_attente, confirme, annule ou termine")
	cmd.Flags().BoolVar(&all, "all", false, "tous les rendez-vous de la plateforme")
	return cmd
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <appointment-id> <status>",
		Short: "Changer le statut d'un rendez-vous (médecin connecté)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := doctorID(a, nil)
			if err != nil {
				return err
			}
			appt, err := stats.New(a.api, a.logger).UpdateAppointmentStatus(cmd.Context(), id, args[0], models.AppointmentStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendez-vous %s : %s\n", appt.ID, appt.Status)
			return nil
		},
	}
}
