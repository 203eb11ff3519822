package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Keys without a viper default (JWT_SECRET, SMTP_*) must still resolve from
// the environment: AutomaticEnv alone does not surface them to Unmarshal.
func TestLoadResolvesKeysWithoutDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "clave-prueba")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "compras@example.com")
	t.Setenv("SMTP_PASSWORD", "s3creta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clave-prueba", cfg.JWTSecret)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "compras@example.com", cfg.SMTPUser)
	assert.Equal(t, "s3creta", cfg.SMTPPassword)
}

func TestLoadDevelopmentDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
}
