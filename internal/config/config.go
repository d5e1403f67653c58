// Package config loads server configuration from environment variables and
// an optional YAML file via viper, following the teacher's cli/root.go
// pattern of Cobra flags bound to viper keys with an env-var fallback.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server holds the HTTP transport configuration (mirrors the teacher's
// config.ServerConfig in config/config.go).
type Server struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
}

// Repository holds the identifier-mapping and partition configuration this
// protocol core needs that the teacher has no analogue for (§4.3, §4.9).
type Repository struct {
	BaseURL             string
	Partitions          []string
	ReservedPartitions  []string
	AdminAgent          string
}

// Database holds the Postgres connection settings for the reference
// pgstore ResourceService.
type Database struct {
	DSN             string
	MaxConnections  int
	ConnMaxLifetime time.Duration
}

// S3 holds the S3-compatible object storage settings for the reference
// s3store BinaryService (grounded on storage/s3aws.go's multi-provider
// support: AWS S3, MinIO, and others behind the same endpoint/region shape).
type S3 struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Redis holds the connection settings for the reference uploadsession
// Tracker.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Cache holds the bbolt-backed local ETag/config cache path.
type Cache struct {
	Path string
}

// Auth holds the OIDC/JWT settings for the reference AgentService.
type Auth struct {
	OIDCIssuer   string
	OIDCClientID string
	JWTSecret    string
	JWTIssuer    string
}

// Logging mirrors internal/logging.Config's fields, loaded through the
// same env-var path as everything else.
type Logging struct {
	Level  string
	Format string
}

// All aggregates every configuration section, the shape Load returns
// (mirrors the teacher's AllConfig in config/config.go).
type All struct {
	Server     Server
	Repository Repository
	Database   Database
	S3         S3
	Redis      Redis
	Cache      Cache
	Auth       Auth
	Logging    Logging
}

// Load reads configuration from environment variables prefixed `LDP_`,
// optionally overlaid by a YAML file at configFile (empty to skip), and
// validates the result.
func Load(configFile string) (*All, error) {
	v := viper.New()
	v.SetEnvPrefix("LDP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	cfg := &All{
		Server: Server{
			Port:            v.GetInt("server.port"),
			Host:            v.GetString("server.host"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			Debug:           v.GetBool("server.debug"),
		},
		Repository: Repository{
			BaseURL:            strings.TrimRight(v.GetString("repository.base_url"), "/"),
			Partitions:         splitCSV(v.GetString("repository.partitions")),
			ReservedPartitions: splitCSV(v.GetString("repository.reserved_partitions")),
			AdminAgent:         v.GetString("repository.admin_agent"),
		},
		Database: Database{
			DSN:             v.GetString("database.dsn"),
			MaxConnections:  v.GetInt("database.max_connections"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		S3: S3{
			Endpoint:        v.GetString("s3.endpoint"),
			Region:          v.GetString("s3.region"),
			Bucket:          v.GetString("s3.bucket"),
			AccessKeyID:     v.GetString("s3.access_key_id"),
			SecretAccessKey: v.GetString("s3.secret_access_key"),
			UsePathStyle:    v.GetBool("s3.use_path_style"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: Cache{
			Path: v.GetString("cache.path"),
		},
		Auth: Auth{
			OIDCIssuer:   v.GetString("auth.oidc_issuer"),
			OIDCClientID: v.GetString("auth.oidc_client_id"),
			JWTSecret:    v.GetString("auth.jwt_secret"),
			JWTIssuer:    v.GetString("auth.jwt_issuer"),
		},
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.debug", false)

	v.SetDefault("repository.base_url", "http://localhost:8080")
	v.SetDefault("repository.partitions", "repository")
	v.SetDefault("repository.reserved_partitions", "upload,.well-known")
	v.SetDefault("repository.admin_agent", "http://www.trellisldp.org/ns/trellis#RepositoryAdministrator")

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("s3.use_path_style", true)
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.path", "./ldp-cache.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func validate(cfg *All) error {
	v := NewValidator()
	v.RequireURL("Repository.BaseURL", cfg.Repository.BaseURL)
	v.RequirePositiveInt("Server.Port", cfg.Server.Port)
	if len(cfg.Repository.Partitions) == 0 {
		v.fail("Repository.Partitions must name at least one partition")
	}
	return v.Validate()
}

// MustGetenv reads a required environment variable directly, bypassing
// viper, for bootstrap-time secrets that should never be committed to a
// config file (mirrors config.EnvConfig.MustGetString's panic-on-missing
// behavior).
func MustGetenv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s not set", key))
	}
	return value
}
