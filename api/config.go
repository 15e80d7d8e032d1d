package main

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	Port      int           `yaml:"port"`
	Env       string        `yaml:"env"`
	JWTSecret string        `yaml:"jwt_secret"`
	DB        dbConfig      `yaml:"db"`
	SMTP      smtpConfig    `yaml:"smtp"`
	Limiter   limiterConfig `yaml:"limiter"`
	CORS      corsConfig    `yaml:"cors"`
}

type dbConfig struct {
	Engine       string `yaml:"engine"` // memory, sqlite or postgres
	Path         string `yaml:"path"`   // sqlite database file
	DSN          string `yaml:"dsn"`    // postgres connection string
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxIdleTime  string `yaml:"max_idle_time"`

	maxIdleTime time.Duration
}

type smtpConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Sender   string `yaml:"sender"`
}

type limiterConfig struct {
	Enabled              bool    `yaml:"enabled"`
	MaxRequestsPerSecond float64 `yaml:"max_requests_per_second"`
	Burst                int     `yaml:"burst"`
}

type corsConfig struct {
	TrustedOrigins []string `yaml:"trusted_origins"`
}

func defaultConfig() config {
	return config{
		Port: 3000,
		Env:  "development",
		DB: dbConfig{
			Engine:       engineMemory,
			Path:         "agrihelp.db",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxIdleTime:  "15m",
		},
		Limiter: limiterConfig{
			MaxRequestsPerSecond: 2,
			Burst:                4,
		},
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// loadConfig reads the YAML file at path over the built-in defaults.
// ${VAR_NAME} references in the file are replaced with environment values
// before parsing. An empty path returns the defaults untouched.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		expanded := envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
			name := envVarPattern.FindSubmatch(m)[1]
			return []byte(os.Getenv(string(name)))
		})
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}
	d, err := time.ParseDuration(cfg.DB.MaxIdleTime)
	if err != nil {
		return cfg, fmt.Errorf("invalid db.max_idle_time %q: %w", cfg.DB.MaxIdleTime, err)
	}
	cfg.DB.maxIdleTime = d
	return cfg, nil
}
