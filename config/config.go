package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Calendar configuration
	Timezone  string
	WeekStart time.Weekday

	// Catalog configuration
	SeedFile     string
	LatencyScale float64
	AdminPage    int

	// Auth configuration
	DemoPassword   string
	JWTSecret      string
	SessionTTL     time.Duration
	SessionBackend string
	AuthRateLimit  float64
	AuthRateBurst  int

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUserID       string
	EventsChannel      string

	// Monitoring
	EnableMetrics    bool
	MetricsCron      string
	SessionPurgeCron string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Calendar
		Timezone:  getEnv("TIMEZONE", "Local"),
		WeekStart: getEnvAsWeekday("WEEK_START", time.Sunday),

		// Catalog
		SeedFile:     getEnv("SEED_FILE", ""),
		LatencyScale: getEnvAsFloat("LATENCY_SCALE", 1),
		AdminPage:    getEnvAsInt("ADMIN_PAGE_SIZE", 10),

		// Auth
		DemoPassword:   getEnv("DEMO_PASSWORD", "password"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", "24h"),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		AuthRateLimit:  getEnvAsFloat("AUTH_RATE_LIMIT", 1),
		AuthRateBurst:  getEnvAsInt("AUTH_RATE_BURST", 5),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "event-server"),
		EventsChannel:      getEnv("EVENTS_CHANNEL", "events"),

		// Monitoring
		EnableMetrics:    getEnvAsBool("ENABLE_METRICS", true),
		MetricsCron:      getEnv("METRICS_CRON", "@every 30s"),
		SessionPurgeCron: getEnv("SESSION_PURGE_CRON", "@every 10m"),
	}
}

// Location resolves Timezone, falling back to the host zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func (c *Config) PubNubEnabled() bool {
	return c.PubNubPublishKey != "" && c.PubNubSubscribeKey != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsWeekday(key string, defaultValue time.Weekday) time.Weekday {
	valueStr := strings.ToLower(getEnv(key, ""))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == valueStr {
			return d
		}
	}
	return defaultValue
}
