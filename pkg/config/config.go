package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Backends and auth providers
const (
	BackendPostgres  = "postgres"
	BackendMongo     = "mongo"
	AuthSupabase     = "supabase"
	AuthFirebase     = "firebase"
	DefaultAvatarURL = "https://via.placeholder.com/36?text=👤"
)

type Config struct {
	Port                    string `validate:"required,numeric"`
	Env                     string
	LogLevel                string
	DataBackend             string `validate:"oneof=postgres mongo"`
	PostgresConnStr         string `validate:"required_if=DataBackend postgres"`
	MongoURI                string `validate:"required_if=DataBackend mongo"`
	MongoDatabase           string `validate:"required_if=DataBackend mongo"`
	AutoMigrate             bool
	AuthProvider            string `validate:"oneof=supabase firebase"`
	SupabaseURL             string `validate:"required,url"`
	SupabaseJWTSecret       string `validate:"required_if=AuthProvider supabase"`
	FirebaseCredentialsPath string `validate:"required_if=AuthProvider firebase"`
	PlaceholderAvatarURL    string `validate:"required"`
	ProfilePath             string
	LoginPath               string
	Timezone                string
	LiveUpdates             bool
}

// Load reads the configuration from the environment, after loading an
// optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DataBackend:             getEnv("DATA_BACKEND", BackendPostgres),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "beawarely"),
		AutoMigrate:             getEnvBool("AUTO_MIGRATE", false),
		AuthProvider:            getEnv("AUTH_PROVIDER", AuthSupabase),
		SupabaseURL:             getEnv("SUPABASE_URL", ""),
		SupabaseJWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PlaceholderAvatarURL:    getEnv("PLACEHOLDER_AVATAR_URL", DefaultAvatarURL),
		ProfilePath:             getEnv("PROFILE_PATH", "/profile.html"),
		LoginPath:               getEnv("LOGIN_PATH", "/login"),
		Timezone:                getEnv("TIMEZONE", "Local"),
		LiveUpdates:             getEnvBool("LIVE_UPDATES", true),
	}
}

// Validate reports missing or inconsistent settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location returns the time zone feed timestamps are shown in
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
