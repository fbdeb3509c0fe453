package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Port           string
	Environment    string
	APIKey         string
	AdminUsername  string
	AdminPassword  string
	AllowedOrigins []string

	// 成果物
	ArtifactDir string
	ModelFile   string
	SchemaFile  string
	CatalogFile string

	// ロギング
	LogLevel  string
	LogFormat string

	// レート制限（0で無効）
	RateLimitRPS   float64
	RateLimitBurst int

	// モニタリング
	MonitoringCapacity int
	MonitoringTimezone string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		APIKey:         getEnv("API_KEY", ""),
		AdminUsername:  getEnv("ADMIN_USERNAME", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),

		ArtifactDir: getEnv("ARTIFACT_DIR", "artifacts"),
		ModelFile:   getEnv("MODEL_FILE", "model.json"),
		SchemaFile:  getEnv("SCHEMA_FILE", "columns.json"),
		CatalogFile: getEnv("CATALOG_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		MonitoringCapacity: getEnvInt("MONITORING_CAPACITY", 10000),
		MonitoringTimezone: getEnv("MONITORING_TIMEZONE", "Asia/Kolkata"),
	}
}

// ModelPath model.jsonのパス。MODEL_FILEが絶対パスならそのまま使う
func (c *Config) ModelPath() string {
	return resolve(c.ArtifactDir, c.ModelFile)
}

// SchemaPath columns.jsonのパス
func (c *Config) SchemaPath() string {
	return resolve(c.ArtifactDir, c.SchemaFile)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

// getEnvList カンマ区切りの値。未設定なら nil
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
