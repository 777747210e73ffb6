package main

import (
	"log"
	"os"
	"strconv"

	"github.com/gdpchart/data"
	"github.com/gdpchart/models"
	"github.com/joho/godotenv"
)

// Config is read from the environment (optionally via .env) and then
// overridden by command line flags.
type Config struct {
	PrimaryURL               string
	Fallback                 string
	DataDir                  string
	Port                     string
	LogDir                   string
	Width                    int
	FallbackOnTransportError bool
	Open                     bool
}

func loadConfig() Config {
	return Config{
		PrimaryURL:               envOr("GDP_PRIMARY_URL", data.PrimaryURL),
		Fallback:                 envOr("GDP_FALLBACK", data.FallbackFile),
		DataDir:                  envOr("GDP_DATA_DIR", "."),
		Port:                     envOr("PORT", "8080"),
		LogDir:                   envOr("GDP_LOG_DIR", "logs"),
		Width:                    envInt("GDP_WIDTH", models.DefaultWidth),
		FallbackOnTransportError: envBool("GDP_FALLBACK_ON_TRANSPORT_ERROR", false),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return def
	}
	return b
}

func main() {
	// .env is optional; the environment and flags are enough on their own
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg := loadConfig()
	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
