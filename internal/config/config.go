package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config groups the settings per concern. The sections are named fields so
// that same-named settings such as PORT and DB_PORT stay unambiguous.
type Config struct {
	HTTPServer HTTPServer
	Database   Database
	Auth       Auth
	Twilio     Twilio
}

type HTTPServer struct {
	BindAddress     string        `env:"BIND_ADDRESS" env-default:"0.0.0.0"`
	Port            string        `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" env-default:"1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" env-default:"*" env-separator:","`
}

type Database struct {
	URL             string        `env:"DATABASE_URL"`
	Driver          string        `env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            string        `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"postgres"`
	Name            string        `env:"DB_NAME" env-default:"forum"`
	SSLMode         string        `env:"DB_SSLMODE" env-default:"disable"`
	Path            string        `env:"DB_PATH" env-default:"forum.db"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	LogLevel        string        `env:"DB_LOG_LEVEL" env-default:"warn"`
}

// DSN returns the connection string for the configured driver. DATABASE_URL
// wins when set; otherwise sqlite uses the file path and postgres a URL built
// from the DB_* fields.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&TimeZone=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"72h"`
}

type Twilio struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `env:"TWILIO_FROM_NUMBER"`
}

// Enabled reports whether SMS notifications can be sent.
func (t Twilio) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

// New reads the configuration from the environment. Values in envFile, when
// the file exists, override the process environment.
func New(envFile string) (*Config, error) {
	conf := &Config{}

	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Overload: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.ReadEnv: %w", err)
	}

	switch conf.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", conf.Database.Driver)
	}

	return conf, nil
}

