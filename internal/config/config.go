package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	App        AppConfig        `toml:"app"`
	MySQL      MySQLConfig      `toml:"mysql"`
	Redis      RedisConfig      `toml:"redis"`
	RabbitMQ   RabbitMQConfig   `toml:"rabbitmq"`
	MinIO      MinIOConfig      `toml:"minio"`
	Extraction ExtractionConfig `toml:"extraction"`
}

type AppConfig struct {
	Name        string `toml:"name"`
	Env         string `toml:"env"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	GinMode     string `toml:"gin_mode"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr                string `toml:"addr"`
	Password            string `toml:"password"`
	DB                  int    `toml:"db"`
	TimetableTTLSeconds int    `toml:"timetable_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL           string `toml:"url"`
	PipelineQueue string `toml:"pipeline_queue"`
	RequeueOnce   bool   `toml:"requeue_once"`
}

type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

type ExtractionConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "learning-yogi",
			Env:         "dev",
			Host:        "0.0.0.0",
			Port:        8080,
			GinMode:     "debug",
			MaxUploadMB: 15,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "learning_yogi",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr:                "127.0.0.1:6379",
			Password:            "",
			DB:                  0,
			TimetableTTLSeconds: 300,
		},
		RabbitMQ: RabbitMQConfig{
			URL:           "", // empty = run pipelines in-process
			PipelineQueue: "document.pipeline",
			RequeueOnce:   false,
		},
		MinIO: MinIOConfig{
			Endpoint:  "127.0.0.1:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "timetable-uploads",
			UseSSL:    false,
		},
		Extraction: ExtractionConfig{
			BaseURL:        "http://127.0.0.1:8000",
			TimeoutSeconds: 120,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.MaxUploadMB = getEnvAsInt("APP_MAX_UPLOAD_MB", cfg.App.MaxUploadMB)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TimetableTTLSeconds = getEnvAsInt("REDIS_TIMETABLE_TTL_SECONDS", cfg.Redis.TimetableTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.PipelineQueue = getEnv("RABBITMQ_PIPELINE_QUEUE", cfg.RabbitMQ.PipelineQueue)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)

	cfg.Extraction.BaseURL = getEnv("EXTRACTION_BASE_URL", cfg.Extraction.BaseURL)
	cfg.Extraction.TimeoutSeconds = getEnvAsInt("EXTRACTION_TIMEOUT_SECONDS", cfg.Extraction.TimeoutSeconds)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
