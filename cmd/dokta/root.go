package main

import (
	"strings"

	"dokta/client"
	"dokta/client/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "DOKTA"

// Settings keys. Each is bound to a flag and to DOKTA_<KEY> in the environment.
const (
	keyAPIURL       = "api_url"
	keyStateFile    = "state_file"
	keyGoogleAPIKey = "google_api_key"
	keyVerbose      = "verbose"
)

// app is what every subcommand works with, built once flags are parsed.
type app struct {
	v       *viper.Viper
	logger  *zap.Logger
	api     *client.Client
	session *session.Store
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyAPIURL, "http://localhost:8001")
	v.SetDefault(keyStateFile, "")
	v.SetDefault(keyGoogleAPIKey, "")
	v.SetDefault(keyVerbose, false)
	return v
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (a *app) init() error {
	a.logger = newLogger(a.v.GetBool(keyVerbose))

	path := a.v.GetString(keyStateFile)
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	a.api = client.New(a.v.GetString(keyAPIURL), client.WithLogger(a.logger))
	a.session = session.New(a.api, session.NewFileStore(path), a.logger)
	a.api.Tokens = a.session
	a.session.Restore()
	a.logger.Debug("dokta: ready", zap.String("api", a.api.BaseURL), zap.String("state", path))
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "dokta",
		Short:         "Réservation de consultations médicales au Cameroun",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("api-url", "http://localhost:8001", "base URL of the dokta API")
	pf.String("state-file", "", "session file (default <config dir>/dokta/session.json)")
	pf.String("google-api-key", "", "Google Maps key for direct reverse geocoding")
	pf.BoolP("verbose", "v", false, "debug logging")
	for key, flag := range map[string]string{
		keyAPIURL:       "api-url",
		keyStateFile:    "state-file",
		keyGoogleAPIKey: "google-api-key",
		keyVerbose:      "verbose",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		doctorsCmd(a),
		searchCmd(a),
		slotsCmd(a),
		bookCmd(a),
		cancelCmd(a),
		statsCmd(a),
		geoCmd(a),
		notifyCmd(a),
	)
	return root
}
