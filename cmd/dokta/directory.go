package main

import (
	"fmt"
	"text/tabwriter"

	"dokta/client/directory"
	"dokta/models"

	"github.com/spf13/cobra"
)

func newDirectory(a *app) *directory.Directory {
	opts := []directory.Option{directory.WithLogger(a.logger)}
	if a.session.Current().Authenticated() {
		opts = append(opts, directory.WithPatients(directory.DependentsSource{API: a.api}))
	}
	return directory.New(a.api, opts...)
}

func doctorsCmd(a *app) *cobra.Command {
	var f directory.Filter
	cmd := &cobra.Command{
		Use:   "doctors [id]",
		Short: "Lister les médecins ou afficher une fiche",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := newDirectory(a)
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				d, err := dir.GetDoctor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n%s, %s\nTarif : %d %s\n", d.Nom, d.Specialite, d.Experience, d.Tarif, models.Currency)
				for _, t := range []models.ConsultationType{models.ConsultationCabinet, models.ConsultationDomicile, models.ConsultationTele} {
					p, _ := models.PriceFor(d.Tarif, t)
					fmt.Fprintf(out, "  %-17s %d %s\n", t, p, models.Currency)
				}
				if u := d.MapsURL(); u != "" {
					fmt.Fprintf(out, "Adresse : %s\n%s\n", d.Adresse, u)
				}
				return nil
			}
			doctors, err := dir.ListDoctors(cmd.Context(), f)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOM\tSPÉCIALITÉ\tEXPÉRIENCE\tTARIF")
			for _, d := range doctors {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d %s\n", d.ID, d.Nom, d.Specialite, d.Experience, d.Tarif, models.Currency)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&f.Specialite, "specialite", "", "filtrer par spécialité")
	cmd.Flags().StringVarP(&f.Text, "query", "q", "", "filtrer par nom ou spécialité")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "search <texte>",
		Short: "Rechercher médecins, spécialités et proches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := newDirectory(a)
			var (
				results []models.SearchResult
				err     error
			)
			if remote {
				results, err = dir.RemoteSearch(cmd.Context(), args[0])
			} else {
				results, err = dir.Search(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "Aucun résultat.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Kind, r.Title, r.Subtitle, r.Metadata)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "utiliser la recherche du serveur")
	return cmd
}
