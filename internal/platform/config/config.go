package config

import (
	"os"
	"strconv"
	"strings"
)

// Limits bounds the byte length of stored identity fields. Fixed at startup;
// oversized input is rejected, never truncated.
type Limits struct {
	MaxNameLength    int
	MaxEmailLength   int
	MaxDocHashLength int
}

// Counter configures the shared counter feature.
type Counter struct {
	MaxValue uint32
}

// Postgres captures the SQL backend configuration. Empty DSN means the
// in-memory stores are used.
type Postgres struct {
	DSN string
}

// Redis captures the Redis backend configuration. Empty URL means Redis is
// not configured.
type Redis struct {
	URL string
}

// Kafka captures the event stream configuration. No brokers means events stay
// on the in-memory sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Server is the top-level configuration assembled from the environment.
type Server struct {
	Addr          string
	JWTSigningKey string
	Limits        Limits
	Counter       Counter
	Postgres      Postgres
	Redis         Redis
	Kafka         Kafka
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ATTESTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("KAFKA_EVENTS_TOPIC")
	if topic == "" {
		topic = "attestry.events"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Limits: Limits{
			MaxNameLength:    intFromEnv("MAX_NAME_LENGTH", 64),
			MaxEmailLength:   intFromEnv("MAX_EMAIL_LENGTH", 128),
			MaxDocHashLength: intFromEnv("MAX_DOC_HASH_LENGTH", 64),
		},
		Counter: Counter{
			MaxValue: uint32(intFromEnv("COUNTER_MAX_VALUE", 1000)),
		},
		Postgres: Postgres{DSN: os.Getenv("POSTGRES_DSN")},
		Redis:    Redis{URL: os.Getenv("REDIS_URL")},
		Kafka:    Kafka{Brokers: brokers, Topic: topic},
	}
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
