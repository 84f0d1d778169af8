package main

import (
	"fmt"

	"dokta/client"
	"dokta/models"

	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var tel, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Se connecter avec son numéro de téléphone",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.session.Login(cmd.Context(), tel, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connecté : %s (%s)\n", u.Nom, u.Type)
			return nil
		},
	}
	cmd.Flags().StringVar(&tel, "telephone", "", "numéro (+237XXXXXXXXX ou 6XXXXXXXX)")
	cmd.Flags().StringVar(&password, "password", "", "mot de passe")
	_ = cmd.MarkFlagRequired("telephone")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var req models.RegisterRequest
	var userType string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Créer un compte patient ou médecin",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TypeUtilisateur = models.UserType(userType)
			u, err := a.session.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compte créé : %s (%s)\n", u.Nom, u.Telephone)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&userType, "type", string(models.UserTypePatient), "patient ou medecin")
	f.StringVar(&req.Nom, "nom", "", "nom complet")
	f.StringVar(&req.Telephone, "telephone", "", "numéro de téléphone")
	f.StringVar(&req.MotDePasse, "password", "", "mot de passe")
	f.IntVar(&req.Age, "age", 0, "âge (patient)")
	f.StringVar(&req.Ville, "ville", "", "ville (patient)")
	f.StringVar(&req.Specialite, "specialite", "", "spécialité (médecin)")
	f.StringVar(&req.Experience, "experience", "", "expérience, ex. \"8 ans\" (médecin)")
	f.IntVar(&req.Tarif, "tarif", 0, "tarif de base en FCFA (médecin)")
	f.StringVar(&req.Diplomes, "diplomes", "", "diplômes (médecin)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Se déconnecter",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Déconnecté.")
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Afficher le profil connecté",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur := a.session.Current()
			if !cur.Authenticated() {
				return &client.AuthError{Message: "Non connecté. Utilisez « dokta login »."}
			}
			u, err := a.session.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s\n", u.Nom, u.Telephone, u.Type)
			if u.Type == models.UserTypeDoctor {
				fmt.Fprintf(out, "Spécialité : %s  Tarif : %d %s  ID : %s\n", u.Specialite, u.Tarif, models.Currency, u.ID)
			}
			for _, d := range u.Dependents {
				fmt.Fprintf(out, "  proche : %s (%d ans, %s) [%s]\n", d.Nom, d.Age, d.Lien, d.ID)
			}
			return nil
		},
	}
}
