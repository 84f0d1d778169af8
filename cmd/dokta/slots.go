package main

import (
	"fmt"
	"io"
	"time"

	"dokta/client"
	"dokta/client/slots"
	"dokta/models"

	"github.com/spf13/cobra"
)

func printDay(out io.Writer, day *slots.Day) {
	if day.Fallback() {
		fmt.Fprintln(out, "Attention : créneaux par défaut, le serveur est injoignable.")
	}
	for _, s := range day.Slots {
		mark := "  -"
		if s.Disponible {
			mark = "  ✓"
		}
		fmt.Fprintf(out, "%s %s\n", mark, s.Heure)
	}
}

func slotsCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "slots <doctor-id>",
		Short: "Afficher les créneaux d'un médecin pour une date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = models.Today(time.Now())
			}
			day, err := slots.New(a.api, slots.WithLogger(a.logger)).Fetch(cmd.Context(), args[0], date)
			if day == nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Créneaux du %s :\n", date)
			printDay(cmd.OutOrStdout(), day)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date AAAA-MM-JJ (défaut : aujourd'hui)")
	cmd.AddCommand(slotsSetCmd(a))
	return cmd
}

func slotsSetCmd(a *app) *cobra.Command {
	var (
		date   string
		preset string
		toggle []string
		none   bool
		week   bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Modifier ses disponibilités (médecin connecté)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur := a.session.Current()
			if !cur.Authenticated() || cur.User.Type != models.UserTypeDoctor {
				return &client.AuthError{Message: "Connectez-vous avec un compte médecin."}
			}
			ed := slots.NewEditor(slots.New(a.api, slots.WithLogger(a.logger)), cur.User.ID)
			day, err := ed.Load(cmd.Context(), date)
			if day == nil {
				return err
			}
			if day.Fallback() {
				return fmt.Errorf("disponibilités actuelles introuvables: %w", err)
			}

			switch {
			case none:
				err = ed.SelectAll(false)
			case preset != "":
				err = ed.ApplyPreset(slots.Preset(preset))
			}
			if err != nil {
				return err
			}
			for _, h := range toggle {
				if err := ed.Toggle(h); err != nil {
					return err
				}
			}

			if week {
				err = ed.ApplyToWeek(cmd.Context())
			} else {
				err = ed.Save(cmd.Context())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if week {
				fmt.Fprintf(out, "Disponibilités appliquées à toute la semaine du %s.\n", date)
			} else {
				fmt.Fprintf(out, "Disponibilités du %s enregistrées.\n", date)
			}
			printDay(out, ed.Day())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&date, "date", "", "date AAAA-MM-JJ")
	f.StringVar(&preset, "preset", "", "full-day, morning-only ou afternoon-only")
	f.StringSliceVar(&toggle, "toggle", nil, "heures à inverser, ex. 09:00,14:30")
	f.BoolVar(&none, "none", false, "tout marquer indisponible")
	f.BoolVar(&week, "week", false, "appliquer à toute la semaine (lundi-dimanche)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
