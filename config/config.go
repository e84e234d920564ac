package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           int
	FrontendURL    string
	AllowedOrigins []string
	GoogleRedirect string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
}

type LogConfig struct {
	Level          string
	Format         string
	LogstashEnable bool
	LogstashURL    string
}

// Load reads .env, then config.yml from the working directory, then the
// environment. Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on environment variables")
	}
	return LoadFrom(".")
}

// LoadFrom is Load without the .env step, looking for config.yml in dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Names the service has always been deployed with.
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.google_client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("auth.google_client_secret", "GOOGLE_CLIENT_SECRET")
	_ = v.BindEnv("mongo.uri", "MONGODB_URI")
	_ = v.BindEnv("server.port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := toModel(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.frontend_url", "http://localhost:5174")
	v.SetDefault("server.allowed_origins", "http://localhost:5174")
	v.SetDefault("server.google_redirect", "http://localhost:8080/auth/google/callback")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "calorie-tracker.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("mongo.database", "sso")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.logstash_enable", false)
}

func toModel(v *viper.Viper) *Config {
	var cfg Config
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.FrontendURL = v.GetString("server.frontend_url")
	cfg.Server.AllowedOrigins = splitList(v.GetString("server.allowed_origins"))
	cfg.Server.GoogleRedirect = v.GetString("server.google_redirect")
	cfg.Database.Driver = v.GetString("database.driver")
	cfg.Database.DSN = v.GetString("database.dsn")
	cfg.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	cfg.Database.ConnMaxLifetime = v.GetDuration("database.conn_max_lifetime")
	cfg.Database.AutoMigrate = v.GetBool("database.auto_migrate")
	cfg.Mongo.URI = v.GetString("mongo.uri")
	cfg.Mongo.Database = v.GetString("mongo.database")
	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	cfg.Auth.TokenTTL = v.GetDuration("auth.token_ttl")
	cfg.Auth.GoogleClientID = v.GetString("auth.google_client_id")
	cfg.Auth.GoogleClientSecret = v.GetString("auth.google_client_secret")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Log.LogstashEnable = v.GetBool("log.logstash_enable")
	cfg.Log.LogstashURL = v.GetString("log.logstash_url")
	return &cfg
}

// splitList accepts a comma separated string, which is how lists arrive
// from the environment.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if c.Database.DSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Auth.GoogleClientID != "" && c.Auth.GoogleClientSecret != ""
}
