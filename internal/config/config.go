package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Server   string `yaml:"server"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	MaxOpenConns int `yaml:"maxOpenConns"`
	MaxIdleConns int `yaml:"maxIdleConns"`
}

// DSN composes the PostgreSQL connection string. Server may carry an
// explicit port; 5432 is assumed otherwise.
func (d DatabaseConfig) DSN() string {
	host := d.Server
	if !strings.Contains(host, ":") {
		host += ":5432"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   host,
		Path:   "/" + d.Name,
	}
	return u.String()
}

type CORSConfig struct {
	// Origins holds the allowed cross-origin hosts. Empty means the
	// CORS middleware is not installed at all.
	Origins []string `yaml:"origins"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

// BuildConfig is the deployment identity surfaced at GET /api/version/.
type BuildConfig struct {
	StackName  string `yaml:"stackName"`
	Tag        string `yaml:"tag"`
	Revision   string `yaml:"revision"`
	DeployedAt string `yaml:"deployedAt"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	CORS      CORSConfig      `yaml:"cors"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Build     BuildConfig     `yaml:"build"`
}

// Load reads the optional YAML config file at path and overlays the
// process environment on top of it. Environment always wins; it is
// read once here and treated as immutable for the process lifetime.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			MaxOpenConns: 20,
			MaxIdleConns: 10,
		},
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Database.Server == "" {
		return nil, fmt.Errorf("database server is required (POSTGRES_SERVER)")
	}
	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("database name is required (POSTGRES_DB)")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Database.Server, "POSTGRES_SERVER")
	setString(&c.Database.User, "POSTGRES_USER")
	setString(&c.Database.Password, "POSTGRES_PASSWORD")
	setString(&c.Database.Name, "POSTGRES_DB")

	if v, ok := os.LookupEnv("BACKEND_CORS_ORIGINS"); ok {
		c.CORS.Origins = SplitOrigins(v)
	}

	setString(&c.Redis.URL, "REDIS_URL")

	setString(&c.Build.StackName, "STACK_NAME")
	setString(&c.Build.Tag, "TAG")
	setString(&c.Build.Revision, "REVISION")
	setString(&c.Build.DeployedAt, "DEPLOYED_AT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// SplitOrigins parses a comma-separated origin list, trimming
// whitespace and dropping empty entries.
func SplitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
