// internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Planner  PlannerConfig
	Cache    CacheConfig
	Events   EventsConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	IngestPort     string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PlannerConfig drives the projection and ordering engine. SafetyBufferKg is
// deployment specific and should cover several days of consumption.
type PlannerConfig struct {
	SafetyBufferKg         float64
	HorizonDays            int
	StoreTimeoutSeconds    int
	ForecastTimeoutSeconds int
	ForecastWorkers        int
	DemandDailySeasonality bool
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	HistoryLength int
}

type EventsConfig struct {
	KafkaBrokers  []string
	DecisionTopic string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	DownloadDir     string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = build()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("INGEST_PORT", "8001")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "cacao")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("PLANNER_SAFETY_BUFFER_KG", 2000.0)
	viper.SetDefault("PLANNER_HORIZON_DAYS", 30)
	viper.SetDefault("PLANNER_STORE_TIMEOUT_SECONDS", 5)
	viper.SetDefault("PLANNER_FORECAST_TIMEOUT_SECONDS", 20)
	viper.SetDefault("PLANNER_FORECAST_WORKERS", 2)
	viper.SetDefault("PLANNER_DEMAND_DAILY_SEASONALITY", true)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_HISTORY_LENGTH", 50)
	viper.SetDefault("KAFKA_BROKERS", []string{})
	viper.SetDefault("KAFKA_DECISION_TOPIC", "purchase-recommendations")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_ACCESS_KEY", "")
	viper.SetDefault("S3_SECRET_KEY", "")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_USE_SSL", true)
	viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
	viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/tmp/drive")
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			IngestPort:     viper.GetString("INGEST_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Planner: PlannerConfig{
			SafetyBufferKg:         viper.GetFloat64("PLANNER_SAFETY_BUFFER_KG"),
			HorizonDays:            viper.GetInt("PLANNER_HORIZON_DAYS"),
			StoreTimeoutSeconds:    viper.GetInt("PLANNER_STORE_TIMEOUT_SECONDS"),
			ForecastTimeoutSeconds: viper.GetInt("PLANNER_FORECAST_TIMEOUT_SECONDS"),
			ForecastWorkers:        viper.GetInt("PLANNER_FORECAST_WORKERS"),
			DemandDailySeasonality: viper.GetBool("PLANNER_DEMAND_DAILY_SEASONALITY"),
		},
		Cache: CacheConfig{
			Enabled:       viper.GetBool("CACHE_ENABLED"),
			RedisURL:      viper.GetString("REDIS_URL"),
			RedisHost:     viper.GetString("REDIS_HOST"),
			RedisPort:     viper.GetString("REDIS_PORT"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
			HistoryLength: viper.GetInt("CACHE_HISTORY_LENGTH"),
		},
		Events: EventsConfig{
			KafkaBrokers:  splitList(viper.GetStringSlice("KAFKA_BROKERS")),
			DecisionTopic: viper.GetString("KAFKA_DECISION_TOPIC"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("S3_ENDPOINT"),
			AccessKey: viper.GetString("S3_ACCESS_KEY"),
			SecretKey: viper.GetString("S3_SECRET_KEY"),
			Bucket:    viper.GetString("S3_BUCKET"),
			Region:    viper.GetString("S3_REGION"),
			UseSSL:    viper.GetBool("S3_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
			DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
		},
	}
}

// splitList flattens comma separated entries, as env values arrive as a
// single string.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// StoreTimeout bounds a single store round-trip.
func (p PlannerConfig) StoreTimeout() time.Duration {
	if p.StoreTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.StoreTimeoutSeconds) * time.Second
}

// ForecastTimeout bounds a single model fit and prediction.
func (p PlannerConfig) ForecastTimeout() time.Duration {
	if p.ForecastTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(p.ForecastTimeoutSeconds) * time.Second
}
