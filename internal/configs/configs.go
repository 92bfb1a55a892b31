/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters by reading operating system environment variables,
including the running environment, port, CORS allowed origins, the retained history
capacity, and the profanity denylist used by the message filter.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultProfanityWords is the stock denylist applied when PROFANITY_WORDS is unset.
// Matching is whole-word and case-insensitive; see the relay package.
var DefaultProfanityWords = []string{
	"asshole",
	"porn",
	"sex",
	"sexy",
	"scoundrel",
	"fucker",
	"idiot",
	"stupid",
	"dumb",
	"nonsense",
	"ugly",
	"fool",
	"shit",
	"fuck",
	"bitch",
	"bastard",
	"crap",
}

// DefaultHistoryCapacity is the number of messages retained when HISTORY_CAPACITY is unset.
const DefaultHistoryCapacity = 200

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Relay Settings
	HistoryCapacity int
	ProfanityWords  []string
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation. It returns a pointer to the AppConfig struct and any
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Relay Settings ---
	// HistoryCapacity
	capacityStr := os.Getenv("HISTORY_CAPACITY")
	if capacityStr == "" {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	} else {
		capacity, err := strconv.Atoi(capacityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_CAPACITY environment variable: %w", err)
		}
		if capacity <= 0 {
			return nil, fmt.Errorf("HISTORY_CAPACITY must be positive, got %d", capacity)
		}
		cfg.HistoryCapacity = capacity
	}

	// ProfanityWords
	wordsStr := os.Getenv("PROFANITY_WORDS")
	if wordsStr != "" {
		words := strings.Split(wordsStr, ",")
		for _, word := range words {
			trimmed := strings.TrimSpace(word)
			if trimmed != "" {
				cfg.ProfanityWords = append(cfg.ProfanityWords, trimmed)
			}
		}
	} else {
		cfg.ProfanityWords = DefaultProfanityWords
	}

	return cfg, nil
}
