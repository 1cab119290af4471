package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// MongoURI selects the MongoDB store; empty keeps resources in memory.
	MongoURI            string
	Port                string
	DBName              string
	ResourcesCollection string
	APIKey              string
	BearerToken         string
	SeedIDs             []string
	LockedIDs           []string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		MongoURI:            os.Getenv("SANDBOX_MONGO_URI"),
		Port:                getEnv("SANDBOX_PORT", "8080"),
		DBName:              getEnv("SANDBOX_DB_NAME", "bulkdelete_sandbox"),
		ResourcesCollection: getEnv("SANDBOX_COLLECTION_RESOURCES", "resources"),
		APIKey:              os.Getenv("SANDBOX_API_KEY"),
		BearerToken:         os.Getenv("SANDBOX_API_TOKEN"),
		SeedIDs:             splitList(os.Getenv("SANDBOX_SEED_IDS")),
		LockedIDs:           splitList(os.Getenv("SANDBOX_LOCKED_IDS")),
		ReadTimeout:         getEnvDuration("SANDBOX_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:        getEnvDuration("SANDBOX_WRITE_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("SANDBOX_API_KEY is required")
	}
	if c.BearerToken == "" {
		return fmt.Errorf("SANDBOX_API_TOKEN is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("SANDBOX_PORT must be numeric: %q", c.Port)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		d, err := time.ParseDuration(valStr)
		if err == nil {
			return d
		}
		return fallback
	}
	return time.Duration(val) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
