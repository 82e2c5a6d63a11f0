package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_DevelopmentFallbacks(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, DefaultPromoteKey, cfg.Admin.PromoteKey)
	assert.Equal(t, DefaultAppURL, cfg.App.PublicURL)
	assert.Equal(t, "http://localhost:4000", cfg.App.APIURL)
	assert.Equal(t, DefaultFromEmail, cfg.SMTP.From)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, time.Hour, cfg.Redis.ResetWindow)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, time.Hour, cfg.Password.ResetCleanupInterval)
	assert.Equal(t, 1.0, cfg.RateLimit.AuthRPS)
	assert.Equal(t, 10, cfg.RateLimit.AuthBurst)

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Warnings(), 3)
}

func TestFromViper_TrimsAppURL(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{
		"APP_URL": "https://shop.example.com/",
		"API_URL": "https://api.example.com/",
	}))
	assert.Equal(t, "https://shop.example.com", cfg.App.PublicURL)
	assert.Equal(t, "https://api.example.com", cfg.App.APIURL)
}

func TestValidate_ProductionRejectsWeakDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"ENVIRONMENT": "production"}))
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg = fromViper(newTestViper(map[string]interface{}{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "a-long-random-secret",
	}))
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PROMOTE_KEY")

	cfg = fromViper(newTestViper(map[string]interface{}{
		"ENVIRONMENT":       "production",
		"JWT_SECRET":        "a-long-random-secret",
		"ADMIN_PROMOTE_KEY": "another-secret",
	}))
	require.NoError(t, cfg.Validate())
}

func TestValidate_Drivers(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"DB_DRIVER": "postgres"}))
	require.Error(t, cfg.Validate())

	cfg = fromViper(newTestViper(map[string]interface{}{
		"DB_DRIVER": "POSTGRES",
		"DB_HOST":   "localhost",
		"DB_NAME":   "storefront",
	}))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "host=localhost port=5432 user= password= dbname=storefront sslmode=disable", cfg.Database.DSN())

	cfg = fromViper(newTestViper(map[string]interface{}{"DB_DRIVER": "sqlite"}))
	require.Error(t, cfg.Validate())

	cfg = fromViper(newTestViper(map[string]interface{}{"DB_DRIVER": "memory"}))
	require.NoError(t, cfg.Validate())

	cfg = fromViper(newTestViper(map[string]interface{}{
		"DB_DRIVER":         "memory",
		"ENVIRONMENT":       "production",
		"JWT_SECRET":        "a-long-random-secret",
		"ADMIN_PROMOTE_KEY": "another-secret",
	}))
	require.Error(t, cfg.Validate())
}

func TestSMTPConfigured(t *testing.T) {
	assert.False(t, SMTPConfig{Host: "smtp.example.com"}.Configured())
	assert.True(t, SMTPConfig{Host: "smtp.example.com", User: "u", Password: "p"}.Configured())
}
