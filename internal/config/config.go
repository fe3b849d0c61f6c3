package config

import (
	"os"
	"strconv"
)

type Config struct {
	Env          string
	HTTPPort     string
	DatabaseURL  string // empty: in-memory repositories
	EventBus     string // log|redis|kafka
	RedisAddr    string
	EventChannel string
	KafkaBroker  string
	EventTopic   string
	RateRPS      int
	WorkerCount  int
}

func Load() Config {
	return Config{
		Env:          get("APP_ENV", "dev"),
		HTTPPort:     get("HTTP_PORT", "8080"),
		DatabaseURL:  get("DATABASE_URL", ""),
		EventBus:     get("EVENT_BUS", "log"),
		RedisAddr:    get("REDIS_ADDR", "localhost:6379"),
		EventChannel: get("EVENT_CHANNEL", "transaction-events"),
		KafkaBroker:  get("KAFKA_BROKER", "localhost:9094"),
		EventTopic:   get("EVENT_TOPIC", "transaction.updated"),
		RateRPS:      getInt("RATE_RPS", 100),
		WorkerCount:  getInt("WORKER_COUNT", 4),
	}
}

func get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
