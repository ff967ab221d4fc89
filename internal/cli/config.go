package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadConfig.
const (
	EnvFile      = "YPROJ_FILE"
	EnvLogLevel  = "YPROJ_LOG_LEVEL"
	EnvStrict    = "YPROJ_STRICT"
	EnvTagPrefix = "YPROJ_TAG_PREFIX"
	EnvFormat    = "YPROJ_FORMAT"
)

// DefaultFile is the project file used when neither an argument nor
// YPROJ_FILE names one.
const DefaultFile = "project.yml"

// Config is the CLI configuration. Flags override the environment.
type Config struct {
	File      string
	LogLevel  string
	Strict    bool
	TagPrefix string
	Format    string
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when there is one.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	strict, err := parseBool(os.Getenv(EnvStrict))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvStrict, err)
	}

	return &Config{
		File:      firstNonEmpty(strings.TrimSpace(os.Getenv(EnvFile)), DefaultFile),
		LogLevel:  firstNonEmpty(strings.TrimSpace(os.Getenv(EnvLogLevel)), "warn"),
		Strict:    strict,
		TagPrefix: os.Getenv(EnvTagPrefix),
		Format:    firstNonEmpty(strings.TrimSpace(os.Getenv(EnvFormat)), formatText),
	}, nil
}

func parseBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}

	return strconv.ParseBool(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// parseLevel maps a level name to a slog level.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}

	return level, nil
}
