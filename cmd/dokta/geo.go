package main

import (
	"context"
	"errors"
	"fmt"

	"dokta/client"
	"dokta/client/directory"
	"dokta/client/geo"
	"dokta/client/notify"
	"dokta/models"

	"github.com/spf13/cobra"
)

// fixedLocator reports coordinates given on the command line.
type fixedLocator struct{ lat, lon float64 }

func (f fixedLocator) RequestPermission(context.Context) (bool, error) { return true, nil }
func (f fixedLocator) CurrentPosition(context.Context) (float64, float64, error) {
	return f.lat, f.lon, nil
}

func geocoder(a *app) geo.Geocoder {
	if key := a.v.GetString(keyGoogleAPIKey); key != "" {
		return geo.NewGoogleGeocoder(key)
	}
	return geo.ProxyGeocoder{API: a.api}
}

func geoCmd(a *app) *cobra.Command {
	var lat, lon float64
	var doctor string
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Adresse d'une position et distance jusqu'à un médecin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			h := geo.New(fixedLocator{lat, lon}, geo.WithGeocoder(geocoder(a)), geo.WithLogger(a.logger),
				geo.WithAlert(func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) }))
			loc := h.GetCurrentLocation(cmd.Context())
			if loc == nil {
				return errors.New("position indisponible")
			}
			fmt.Fprintf(out, "Position : %s\n", geo.FormatAddress(*loc))

			if doctor == "" {
				return nil
			}
			d, err := directory.New(a.api).GetDoctor(cmd.Context(), doctor)
			if err != nil {
				return err
			}
			if d.Latitude == 0 && d.Longitude == 0 {
				fmt.Fprintf(out, "%s : adresse inconnue\n", d.Nom)
				return nil
			}
			fmt.Fprintf(out, "%s : %.1f km\n%s\n", d.Nom, geo.CalculateDistance(loc.Latitude, loc.Longitude, d.Latitude, d.Longitude),
				h.MapsURL(d.Latitude, d.Longitude))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().StringVar(&doctor, "doctor", "", "identifiant du médecin")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

// staticToken registers a push token obtained outside the CLI.
type staticToken struct {
	token    string
	platform string
}

func (s staticToken) RequestPermission(context.Context) (bool, error) {
	if s.token == "" {
		return false, notify.ErrUnsupportedDevice
	}
	return true, nil
}

func (s staticToken) PushToken(context.Context) (string, error) { return s.token, nil }

func (s staticToken) DeviceInfo() models.DeviceInfo {
	return models.DeviceInfo{Platform: s.platform, DeviceName: "dokta-cli"}
}

func notifyCmd(a *app) *cobra.Command {
	var tok staticToken
	cmd := &cobra.Command{
		Use:   "notify-register",
		Short: "Enregistrer un jeton de notification pour le compte connecté",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur := a.session.Current()
			if !cur.Authenticated() {
				return &client.AuthError{Message: "Non connecté. Utilisez « dokta login »."}
			}
			reg := notify.New(a.api, tok, tok, notify.WithLogger(a.logger))
			t, err := reg.Register(cmd.Context(), cur.User.ID)
			if err != nil {
				return err
			}
			if t == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications non activées.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Jeton enregistré.")
			return nil
		},
	}
	cmd.Flags().StringVar(&tok.token, "token", "", "jeton push (FCM)")
	cmd.Flags().StringVar(&tok.platform, "platform", "android", "plateforme de l'appareil")
	return cmd
}
