package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           string
	Env            string
	JWTSecret      string
	TokenTTLHours  int
	DBHost         string
	DBUser         string
	DBPass         string
	DBName         string
	DBPort         string
	RedisAddr      string
	UploadDir      string
	BaseURL        string
	EchoOwnMessage bool
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load reads configuration from environment variables with development
// defaults.
func Load() Config {
	ttl, err := strconv.Atoi(getenv("TOKEN_TTL_HOURS", "168"))
	if err != nil || ttl <= 0 {
		ttl = 168
	}
	echo := getenv("WS_ECHO", "true") != "false"

	return Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "dev"),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLHours:  ttl,
		DBHost:         getenv("DB_HOST", "localhost"),
		DBUser:         getenv("DB_USER", "postgres"),
		DBPass:         getenv("DB_PASS", "postgres"),
		DBName:         getenv("DB_NAME", "friendnet"),
		DBPort:         getenv("DB_PORT", "5432"),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		BaseURL:        getenv("BASE_URL", "http://localhost:8080"),
		EchoOwnMessage: echo,
	}
}
