// Package config loads runtime settings from the environment, with a
// .env file honored when present.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// Input
	MailDir      string
	DomainFilter string
	SourcesFile  string

	// Data files
	DataDir                 string
	OutputDir               string
	CacheFile               string
	GazetteerFile           string
	LocationCorrectionsFile string
	EventCorrectionsFile    string

	// Geocoding
	RegionName         string
	RegionPostalPrefix string
	NominatimURL       string
	UserAgent          string
	RequestTimeout     time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. The given env files
// (or a .env file in the working directory when none are named) are loaded
// first; real environment variables win over them.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	dataDir := getEnv("CRIEUR_DATA_DIR", "data")
	return Config{
		MailDir:      getEnv("CRIEUR_MAIL_DIR", "mails"),
		DomainFilter: getEnv("CRIEUR_DOMAIN_FILTER", "framalistes.org"),
		SourcesFile:  getEnv("CRIEUR_SOURCES_FILE", "sources.yaml"),

		DataDir:                 dataDir,
		OutputDir:               getEnv("CRIEUR_OUTPUT_DIR", "out"),
		CacheFile:               getEnv("CRIEUR_CACHE_FILE", dataDir+"/cache_coordonnees.json"),
		GazetteerFile:           getEnv("CRIEUR_GAZETTEER_FILE", dataDir+"/communes.json"),
		LocationCorrectionsFile: getEnv("CRIEUR_LOCATION_CORRECTIONS", dataDir+"/corrections_localisations.json"),
		EventCorrectionsFile:    getEnv("CRIEUR_EVENT_CORRECTIONS", dataDir+"/corrections_annonces.json"),

		RegionName:         getEnv("CRIEUR_REGION", "Dordogne"),
		RegionPostalPrefix: getEnv("CRIEUR_POSTAL_PREFIX", "24"),
		NominatimURL:       getEnv("CRIEUR_NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		UserAgent:          getEnv("CRIEUR_USER_AGENT", "crieur-go/1.0 (contact@gco-perigord.org)"),
		RequestTimeout:     getDuration("CRIEUR_REQUEST_TIMEOUT", 10*time.Second),

		LogFile:  getEnv("CRIEUR_LOG_FILE", "crieur.log"),
		LogLevel: parseLogLevel(getEnv("CRIEUR_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
