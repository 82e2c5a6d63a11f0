package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Development fallbacks. They are refused in production.
const (
	DefaultJWTSecret  = "secret123"
	DefaultPromoteKey = "dev_promote_key"
	DefaultAppURL     = "http://localhost:5173"
	DefaultFromEmail  = "no-reply@example.com"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	SMTP      SMTPConfig
	App       AppConfig
	Admin     AdminConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

// DatabaseConfig selects the account store. Driver is "mongo" (default),
// "postgres" or "memory"; the remaining fields only apply to postgres.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig backs the forgot-password throttle. An empty Addr disables it.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	ResetRequests int
	ResetWindow   time.Duration
}

type JWTConfig struct {
	Secret string
}

type PasswordConfig struct {
	Cost                 int
	ResetCleanupInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Secure   bool
	From     string
}

// Configured reports whether a real relay should be used.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

// AppConfig holds public base URLs. PublicURL is the storefront used in reset
// links; APIURL is this service, used for mail preview links.
type AppConfig struct {
	PublicURL string
	APIURL    string
}

type AdminConfig struct {
	PromoteKey string
}

// MQTTConfig enables audit event publishing when Broker is set.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
	AuthRPS      float64 // Credential endpoints: login, register, reset, promote
	AuthBurst    int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	cfg := fromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "4000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "storefront")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("REDIS_RESET_REQUESTS", 5)
	v.SetDefault("REDIS_RESET_WINDOW", "1h")
	v.SetDefault("RESET_CLEANUP_INTERVAL", "1h")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MQTT_CLIENT_ID", "storefront-identity")
	v.SetDefault("MQTT_TOPIC", "storefront/identity/events")
	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 1)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "x-admin-key"})
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("MONGO_URI"),
			Database:       v.GetString("MONGO_DATABASE"),
			ConnectTimeout: v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:          v.GetString("REDIS_ADDR"),
			Password:      v.GetString("REDIS_PASSWORD"),
			DB:            v.GetInt("REDIS_DB"),
			ResetRequests: v.GetInt("REDIS_RESET_REQUESTS"),
			ResetWindow:   v.GetDuration("REDIS_RESET_WINDOW"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Password: PasswordConfig{
			Cost:                 v.GetInt("PASSWORD_HASH_COST"),
			ResetCleanupInterval: v.GetDuration("RESET_CLEANUP_INTERVAL"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			Secure:   v.GetBool("SMTP_SECURE"),
			From:     v.GetString("FROM_EMAIL"),
		},
		App: AppConfig{
			PublicURL: v.GetString("APP_URL"),
			APIURL:    v.GetString("API_URL"),
		},
		Admin: AdminConfig{
			PromoteKey: v.GetString("ADMIN_PROMOTE_KEY"),
		},
		MQTT: MQTTConfig{
			Broker:   v.GetString("MQTT_BROKER"),
			ClientID: v.GetString("MQTT_CLIENT_ID"),
			Username: v.GetString("MQTT_USERNAME"),
			Password: v.GetString("MQTT_PASSWORD"),
			Topic:    v.GetString("MQTT_TOPIC"),
			QoS:      byte(v.GetUint("MQTT_QOS")),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthRPS:      v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   v.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   v.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
	}

	cfg.applyFallbacks()
	return cfg
}

// applyFallbacks fills the weak development defaults. Validate rejects them
// in production; Warnings lists them elsewhere.
func (c *Config) applyFallbacks() {
	if c.JWT.Secret == "" {
		c.JWT.Secret = DefaultJWTSecret
	}
	if c.Admin.PromoteKey == "" {
		c.Admin.PromoteKey = DefaultPromoteKey
	}
	if c.App.PublicURL == "" {
		c.App.PublicURL = DefaultAppURL
	}
	c.App.PublicURL = strings.TrimRight(c.App.PublicURL, "/")
	if c.App.APIURL == "" {
		c.App.APIURL = "http://localhost:" + c.Server.Port
	}
	c.App.APIURL = strings.TrimRight(c.App.APIURL, "/")
	if c.Password.ResetCleanupInterval <= 0 {
		c.Password.ResetCleanupInterval = time.Hour
	}
	if c.SMTP.From == "" {
		c.SMTP.From = DefaultFromEmail
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("mongo configuration is missing: set MONGO_URI and MONGO_DATABASE")
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("database configuration is missing: set DB_HOST and DB_NAME")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.IsProduction() {
		if c.Database.Driver == DriverMemory {
			return errors.New("DB_DRIVER=memory is not allowed in production")
		}
		if c.JWT.Secret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
		if c.Admin.PromoteKey == DefaultPromoteKey {
			return errors.New("ADMIN_PROMOTE_KEY must be set in production")
		}
	}

	return nil
}

// Warnings lists insecure fallbacks that are active outside production.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.JWT.Secret == DefaultJWTSecret {
		warnings = append(warnings, "JWT_SECRET is not set, using the insecure development default")
	}
	if c.Admin.PromoteKey == DefaultPromoteKey {
		warnings = append(warnings, "ADMIN_PROMOTE_KEY is not set, using the insecure development default")
	}
	if !c.SMTP.Configured() {
		warnings = append(warnings, "SMTP relay is not configured, reset emails are captured in memory")
	}
	return warnings
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
