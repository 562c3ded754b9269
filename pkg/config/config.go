package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	MongoDatabase           string
	RedisURL                string
	KafkaBrokers            string
	KafkaCommandsTopic      string
	JWTSecret               string
	SiteTitle               string
	AttachmentsMaxCount     int
	DescriptionMaxLength    int
	OTLPEndpoint            string
	ServiceName             string
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "feedview"),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379/0"),
		KafkaBrokers:            getEnv("KAFKA_BROKERS", ""),
		KafkaCommandsTopic:      getEnv("KAFKA_COMMANDS_TOPIC", "feedview.commands"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		SiteTitle:               getEnv("SITE_TITLE", "FeedView"),
		AttachmentsMaxCount:     getEnvInt("ATTACHMENTS_MAX_COUNT", 20),
		DescriptionMaxLength:    getEnvInt("DESCRIPTION_MAX_LENGTH", 1500),
		OTLPEndpoint:            getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:             getEnv("OTEL_SERVICE_NAME", "feedview"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}
