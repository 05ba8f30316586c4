package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type PortalAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	Driver     string      `yaml:"driver"` // redis | sqlite | postgres | memory
	DSN        string      `yaml:"dsn"`
	Redis      RedisConfig `yaml:"redis"`
	VisitorTTL string      `yaml:"visitor_ttl"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	PortalAPI PortalAPIConfig `yaml:"portal_api"`
	Storage   StorageConfig   `yaml:"storage"`
	Casbin    CasbinConfig    `yaml:"casbin"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Port    string
	GinMode string

	PortalAPIBaseURL string
	PortalAPITimeout time.Duration

	StorageDriver string
	StorageDSN    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	VisitorTTL    time.Duration

	CasbinModelPath string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml, then lets the environment (optionally
// seeded from a .env file) override the deployment-specific values.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	file, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	timeout, err := time.ParseDuration(file.PortalAPI.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid portal api timeout: %w", err)
	}
	visitorTTL, err := time.ParseDuration(file.Storage.VisitorTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid visitor TTL: %w", err)
	}

	redisDB := file.Storage.Redis.DB
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	return &Config{
		Port:             env("PORT", fmt.Sprintf("%d", file.App.Port)),
		GinMode:          env("GIN_MODE", file.App.GinMode),
		PortalAPIBaseURL: env("PORTAL_API_BASE_URL", file.PortalAPI.BaseURL),
		PortalAPITimeout: timeout,
		StorageDriver:    env("STORAGE_DRIVER", file.Storage.Driver),
		StorageDSN:       env("STORAGE_DSN", file.Storage.DSN),
		RedisAddr:        env("REDIS_ADDR", file.Storage.Redis.Addr),
		RedisPassword:    env("REDIS_PASSWORD", file.Storage.Redis.Password),
		RedisDB:          redisDB,
		VisitorTTL:       visitorTTL,
		CasbinModelPath:  file.Casbin.ModelPath,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
