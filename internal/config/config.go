package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	CMS    CMSConfig
	Cache  CacheConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CMSConfig holds the connection settings for the headless CMS backend.
type CMSConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIToken string `yaml:"api_token"`
	Timeout  time.Duration
}

// CacheConfig selects the response-cache backend and its TTLs.
// Backend is either "memory" or "redis".
type CacheConfig struct {
	Backend     string `yaml:"backend"`
	SectionsTTL string `yaml:"sections_ttl"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		CMS: CMSConfig{
			BaseURL:  viper.GetString("cms.base_url"),
			APIToken: viper.GetString("cms.api_token"),
			Timeout:  viper.GetDuration("cms.timeout") * time.Second,
		},
		Cache: CacheConfig{
			Backend:     viper.GetString("cache.backend"),
			SectionsTTL: viper.GetString("cache.sections_ttl"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("auth.jwt_secret"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Override with environment variables if set
	if baseURL := os.Getenv("CMS_BASE_URL"); baseURL != "" {
		config.CMS.BaseURL = baseURL
	}
	if apiToken := os.Getenv("CMS_API_TOKEN"); apiToken != "" {
		config.CMS.APIToken = apiToken
	}
	if backend := os.Getenv("CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		config.Auth.JWTSecret = jwtSecret
	}

	if config.Cache.Backend == "" {
		config.Cache.Backend = "memory"
	}
	if config.CMS.Timeout == 0 {
		config.CMS.Timeout = 15 * time.Second
	}

	return config, nil
}

// ParseTTLStringOrDefault parses a duration string like "5m" and falls back
// to the given default when the string is empty or malformed.
func (c *Config) ParseTTLStringOrDefault(ttl string, defaultTTL time.Duration) time.Duration {
	if ttl == "" {
		return defaultTTL
	}
	parsed, err := time.ParseDuration(ttl)
	if err != nil {
		return defaultTTL
	}
	return parsed
}
