package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "8001", cfg.AppPort)
	assert.Equal(t, "dokta", cfg.DatabaseName)
	assert.Equal(t, 30, cfg.JWTTTLMinutes)
	assert.Equal(t, 2, cfg.RedisQueueDB)
	assert.True(t, cfg.SeedDemoData)
	assert.Empty(t, cfg.FirebaseCredentialsFile)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)

	AppConfig = cfg
	assert.True(t, IsProduction())
	AppConfig = Config{}
}
