// Package config loads the server configuration from the environment and
// resolves application roles to their database credentials.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"campus-server/internal/roles"
)

// Credentials is the database identity configured for one role.
type Credentials struct {
	User     string
	Password string
}

// Config holds the process configuration. Every role gets its own
// database user so that a session never carries more privilege than the
// role it authenticated as.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	KeyPairPath string `env:"KEY_PAIR_PATH" envDefault:"keypair.bin"`

	DBHost string `env:"DB_HOST" envDefault:"localhost"`
	DBPort string `env:"DB_PORT" envDefault:"5432"`
	DBName string `env:"DB_NAME" envDefault:"campus"`

	// Pool bounds apply to every per-role pool.
	PoolMinConns int32 `env:"DB_POOL_MIN_CONNS" envDefault:"2"`
	PoolMaxConns int32 `env:"DB_POOL_MAX_CONNS" envDefault:"5"`

	AuthUser    string `env:"DB_AUTH_USER" envDefault:"app_auth"`
	AuthPass    string `env:"DB_AUTH_PASS"`
	StudentUser string `env:"DB_STUDENT_USER" envDefault:"app_student"`
	StudentPass string `env:"DB_STUDENT_PASS"`
	ProfUser    string `env:"DB_PROF_USER" envDefault:"app_prof"`
	ProfPass    string `env:"DB_PROF_PASS"`
	AdminUser   string `env:"DB_ADMIN_USER" envDefault:"app_admin"`
	AdminPass   string `env:"DB_ADMIN_PASS"`
}

const envFile = ".env"

// Load reads the .env file if present and parses the configuration from
// the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// ConnString builds a pgx connection string for the given credentials.
func (c *Config) ConnString(creds Credentials) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, creds.User, creds.Password, c.DBName)
}

// Resolver maps an application role to its configured database identity.
// Pure lookup over static configuration, no I/O.
type Resolver struct {
	creds map[roles.Role]Credentials
}

// NewResolver builds a Resolver from the loaded configuration.
func NewResolver(cfg *Config) *Resolver {
	return &Resolver{
		creds: map[roles.Role]Credentials{
			roles.RoleAuth:    {User: cfg.AuthUser, Password: cfg.AuthPass},
			roles.RoleStudent: {User: cfg.StudentUser, Password: cfg.StudentPass},
			roles.RoleProf:    {User: cfg.ProfUser, Password: cfg.ProfPass},
			roles.RoleAdmin:   {User: cfg.AdminUser, Password: cfg.AdminPass},
		},
	}
}

// Resolve returns the credentials configured for the role. An unknown
// role is a configuration error, not a store error.
func (r *Resolver) Resolve(role roles.Role) (Credentials, error) {
	creds, ok := r.creds[role]
	if !ok {
		return Credentials{}, fmt.Errorf("no database credentials found for role %q", role)
	}
	return creds, nil
}
