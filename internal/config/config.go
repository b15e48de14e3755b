package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const defaultPort = "8123"

// Upper bound for the cache durations, one week
const maxDurationSeconds = 7 * 24 * 60 * 60

type Config struct {
	port                   string
	cloudSQLUnixSocketPath string
	dBPassword             string
	dBUsername             string
	sentryDSN              string
	adminToken             string
	googleCloudProject     string
	corsAllowedDomains     []string
	campaignCacheValidity  time.Duration
	campaignRefreshTimeout time.Duration
	env                    environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) CloudSQLUnixSocketPath() string {
	return c.cloudSQLUnixSocketPath
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

// Empty when the admin endpoints are disabled
func (c *Config) AdminToken() string {
	return c.adminToken
}

func (c *Config) GoogleCloudProject() string {
	return c.googleCloudProject
}

// Domain suffixes allowed to make cross origin requests
func (c *Config) CORSAllowedDomains() []string {
	return c.corsAllowedDomains
}

func (c *Config) CampaignCacheValidity() time.Duration {
	return c.campaignCacheValidity
}

func (c *Config) CampaignRefreshTimeout() time.Duration {
	return c.campaignRefreshTimeout
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, campaignCacheValidity: %s, campaignRefreshTimeout: %s, ...}",
		string(c.env),
		c.port,
		c.campaignCacheValidity,
		c.campaignRefreshTimeout,
	)
}

// Load variables from a .env file into the environment, without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func positiveSecondsFromEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%w: %s (%s) must be a positive number of seconds", ErrInvalidValue, key, raw)
	}
	if seconds > maxDurationSeconds {
		return 0, fmt.Errorf("%w: %s (%s) must be at most %d seconds", ErrInvalidValue, key, raw, maxDurationSeconds)
	}

	return time.Duration(seconds) * time.Second, nil
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("CAMPAIGNCACHE_ENVIRONMENT")
	if !ok {
		return missingKey("CAMPAIGNCACHE_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: CAMPAIGNCACHE_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("%w: PORT (%s)", ErrInvalidValue, port)
	}

	cacheValidity, err := positiveSecondsFromEnv("CAMPAIGN_CACHE_VALIDITY_SECONDS", cache.DefaultCacheValidity)
	if err != nil {
		return Config{}, err
	}
	refreshTimeout, err := positiveSecondsFromEnv("CAMPAIGN_REFRESH_TIMEOUT_SECONDS", cache.DefaultRefreshTimeout)
	if err != nil {
		return Config{}, err
	}

	cloudSQLUnixSocketPath := os.Getenv("CLOUDSQL_UNIX_SOCKET")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbUsername := os.Getenv("DB_USERNAME")
	sentryDSN := os.Getenv("SENTRY_DSN")
	adminToken := os.Getenv("ADMIN_TOKEN")
	googleCloudProject := os.Getenv("GOOGLE_CLOUD_PROJECT")

	var corsAllowedDomains []string
	for _, domain := range strings.Split(os.Getenv("CORS_ALLOWED_DOMAINS"), ",") {
		domain = strings.TrimSpace(domain)
		if domain != "" {
			corsAllowedDomains = append(corsAllowedDomains, domain)
		}
	}

	if env == production || env == staging {
		if cloudSQLUnixSocketPath == "" {
			return missingKey("CLOUDSQL_UNIX_SOCKET")
		}
		if dbUsername == "" {
			return missingKey("DB_USERNAME")
		}
		if dbPassword == "" {
			return missingKey("DB_PASSWORD")
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		port:                   port,
		cloudSQLUnixSocketPath: cloudSQLUnixSocketPath,
		dBPassword:             dbPassword,
		dBUsername:             dbUsername,
		sentryDSN:              sentryDSN,
		adminToken:             adminToken,
		googleCloudProject:     googleCloudProject,
		corsAllowedDomains:     corsAllowedDomains,
		campaignCacheValidity:  cacheValidity,
		campaignRefreshTimeout: refreshTimeout,
		env:                    env,
	}, nil
}
