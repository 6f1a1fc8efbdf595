package connection

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	Port     string
	LogLevel string

	AccessKey       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CookiePath   string
	CookieDomain string
	CookieSecure bool

	StoreDriver        string
	CredentialsFile    string
	FirestoreProjectID string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginMaxAttempts int
	LoginCooldown    time.Duration

	CORSAllowOrigins []string
}

// LoadConfig reads the environment, after merging a .env file when one is
// present.
func LoadConfig() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (*Config, error) {
	env := envReader{getenv: getenv}
	cfg := &Config{
		Port:     env.str("PORT", "8080"),
		LogLevel: env.str("LOG_LEVEL", "info"),

		AccessKey:       getenv("ACCESS_KEY"),
		Issuer:          env.str("JWT_ISSUER", "ezwallet"),
		AccessTokenTTL:  env.duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: env.duration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		CookiePath:   env.str("COOKIE_PATH", "/api"),
		CookieDomain: getenv("COOKIE_DOMAIN"),
		CookieSecure: env.boolean("COOKIE_SECURE", true),

		StoreDriver:        strings.ToLower(env.str("STORE_DRIVER", StoreFirestore)),
		CredentialsFile:    getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID: getenv("FIRESTORE_PROJECT_ID"),

		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       env.integer("REDIS_DB", 0),

		LoginMaxAttempts: env.integer("LOGIN_MAX_ATTEMPTS", 5),
		LoginCooldown:    env.duration("LOGIN_COOLDOWN", 15*time.Minute),

		CORSAllowOrigins: env.list("CORS_ALLOW_ORIGINS"),
	}
	if env.err != nil {
		return nil, env.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AccessKey == "" {
		return errors.New("environment variable ACCESS_KEY is not set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreFirestore:
		if c.CredentialsFile == "" {
			return errors.New("environment variable GOOGLE_APPLICATION_CREDENTIALS is not set")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// envReader keeps the first parse error so every variable is read in one pass.
type envReader struct {
	getenv func(string) string
	err    error
}

func (r *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return d
}

func (r *envReader) integer(key string, fallback int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return n
}

func (r *envReader) boolean(key string, fallback bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return b
}

func (r *envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *envReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
