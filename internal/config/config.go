package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
	// RW | RO
	Mode string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Storage struct {
	// memory | postgres
	Driver string
}

type Lock struct {
	// local | redis
	Driver string
	TTL    time.Duration
}

type Poll struct {
	StrictMode     bool
	PersistTimeout time.Duration
}

type Realtime struct {
	SendBuffer int
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisCache
	Postgres Postgres
	Kafka    Kafka
	Storage  Storage
	Lock     Lock
	Poll     Poll
	Realtime Realtime
	Log      Log
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := FromEnv()
	log.Printf("%s backend config : %+v\n", logtag, cfg.redacted())
	return cfg
}

// FromEnv builds the config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
		Kafka:    *newKafka(),
		Storage:  *newStorage(),
		Lock:     *newLock(),
		Poll:     *newPoll(),
		Realtime: *newRealtime(),
		Log:      *newLog(),
	}
}

func (c Config) redacted() Config {
	if c.Postgres.Password != "" {
		c.Postgres.Password = "***"
	}
	if c.Redis.Password != "" {
		c.Redis.Password = "***"
	}
	return c
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "5000"),
		Host: getenv("HTTP_HOST", "localhost"),
		Mode: getenv("INSTANCE_MODE", "RW"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       getenvInt("REDIS_DB", 0),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "livepoll"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newKafka() *Kafka {
	return &Kafka{
		Brokers: splitList(getenv("KAFKA_BROKERS", "")),
		Topic:   getenv("KAFKA_TOPIC", "poll-events"),
		GroupID: getenv("KAFKA_GROUP_ID", "livepoll-events"),
	}
}

func newStorage() *Storage {
	return &Storage{
		Driver: getenv("STORAGE_DRIVER", "memory"),
	}
}

func newLock() *Lock {
	return &Lock{
		Driver: getenv("LOCK_DRIVER", "local"),
		TTL:    getenvDuration("LOCK_TTL", 10*time.Second),
	}
}

func newPoll() *Poll {
	return &Poll{
		StrictMode:     getenvBool("POLL_STRICT_MODE", true),
		PersistTimeout: getenvDuration("PERSIST_TIMEOUT", 5*time.Second),
	}
}

func newRealtime() *Realtime {
	return &Realtime{
		SendBuffer: getenvInt("WS_SEND_BUFFER", 256),
		PingPeriod: getenvDuration("WS_PING_PERIOD", 54*time.Second),
		PongWait:   getenvDuration("WS_PONG_WAIT", 60*time.Second),
		WriteWait:  getenvDuration("WS_WRITE_WAIT", 10*time.Second),
	}
}

func newLog() *Log {
	return &Log{
		Level:  getenv("LOG_LEVEL", "info"),
		Format: getenv("LOG_FORMAT", "text"),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	return val
}

func getenvInt(key string, defaultValue int) int {
	raw := getenv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("%s %s=%q is not an integer. Using default value %d\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getenvBool(key string, defaultValue bool) bool {
	raw := getenv(key, strconv.FormatBool(defaultValue))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		fmt.Printf("%s %s=%q is not a boolean. Using default value %t\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	v, err := time.ParseDuration(raw)
	if err != nil {
		fmt.Printf("%s %s=%q is not a duration. Using default value %s\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
