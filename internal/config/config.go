// backend-go/internal/config/config.go
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
	Shopify  ShopifyConfig
	Report   ReportConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

type ShopifyConfig struct {
	Shop              string
	AccessToken       string
	APIVersion        string
	BaseURL           string
	RequestsPerSecond float64
	MaxRetries        int
	TimeoutSeconds    int
}

type ReportConfig struct {
	HorizonDays        int
	ExcludedTags       []string
	MinFuzzyNameLength int
	GenerateTimeout    time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	Enabled         bool
	CredentialsFile string
	FolderID        string
}

type LogConfig struct {
	Level  string
	Format string
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

		instance = fromViper()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 120)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	viper.SetDefault("SHOPIFY_SHOP", "")
	viper.SetDefault("SHOPIFY_ACCESS_TOKEN", "")
	viper.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	viper.SetDefault("SHOPIFY_BASE_URL", "")
	viper.SetDefault("SHOPIFY_REQUESTS_PER_SECOND", 2.0)
	viper.SetDefault("SHOPIFY_MAX_RETRIES", 5)
	viper.SetDefault("SHOPIFY_TIMEOUT_SECONDS", 30)

	viper.SetDefault("REPORT_HORIZON_DAYS", 365)
	viper.SetDefault("REPORT_EXCLUDED_TAGS", "test,sample,internal")
	viper.SetDefault("REPORT_MIN_FUZZY_NAME_LENGTH", 3)
	viper.SetDefault("REPORT_GENERATE_TIMEOUT_SECONDS", 300)

	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "inventra")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)

	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 600)

	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "")
	viper.SetDefault("STORAGE_REGION", "")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("STORAGE_PREFIX", "reports")

	viper.SetDefault("DRIVE_ENABLED", false)
	viper.SetDefault("DRIVE_CREDENTIALS_FILE", "")
	viper.SetDefault("DRIVE_FOLDER_ID", "")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			Mode:            viper.GetString("SERVER_MODE"),
			ReadTimeout:     viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:    viper.GetInt("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: viper.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Shopify: ShopifyConfig{
			Shop:              viper.GetString("SHOPIFY_SHOP"),
			AccessToken:       viper.GetString("SHOPIFY_ACCESS_TOKEN"),
			APIVersion:        viper.GetString("SHOPIFY_API_VERSION"),
			BaseURL:           viper.GetString("SHOPIFY_BASE_URL"),
			RequestsPerSecond: viper.GetFloat64("SHOPIFY_REQUESTS_PER_SECOND"),
			MaxRetries:        viper.GetInt("SHOPIFY_MAX_RETRIES"),
			TimeoutSeconds:    viper.GetInt("SHOPIFY_TIMEOUT_SECONDS"),
		},
		Report: ReportConfig{
			HorizonDays:        viper.GetInt("REPORT_HORIZON_DAYS"),
			ExcludedTags:       splitList(viper.GetString("REPORT_EXCLUDED_TAGS")),
			MinFuzzyNameLength: viper.GetInt("REPORT_MIN_FUZZY_NAME_LENGTH"),
			GenerateTimeout:    time.Duration(viper.GetInt("REPORT_GENERATE_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt("DB_MAX_CONNS"),
		},
		Cache: CacheConfig{
			Enabled:          viper.GetBool("CACHE_ENABLED"),
			RedisURL:         viper.GetString("REDIS_URL"),
			RedisHost:        viper.GetString("REDIS_HOST"),
			RedisPort:        viper.GetString("REDIS_PORT"),
			RedisPassword:    viper.GetString("REDIS_PASSWORD"),
			RedisDB:          viper.GetInt("REDIS_DB"),
			ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   viper.GetBool("STORAGE_ENABLED"),
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			Prefix:    viper.GetString("STORAGE_PREFIX"),
		},
		Drive: DriveConfig{
			Enabled:         viper.GetBool("DRIVE_ENABLED"),
			CredentialsFile: viper.GetString("DRIVE_CREDENTIALS_FILE"),
			FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
