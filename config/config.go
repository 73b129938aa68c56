package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSetting is returned when a required setting is not configured
var ErrMissingSetting = errors.New("missing required setting")

// LogConfig holds logger settings shared by both binaries
type LogConfig struct {
	Level  string
	Format string
}

// TrainConfig holds configuration of the offline training run
type TrainConfig struct {
	// Input / output
	DatasetPath  string
	ModelPath    string
	CleanCSVPath string // optional export of the training frame

	// Database (optional sink for cleaned listings)
	DatabaseURL string
	DBRetries   int

	// Evaluation
	TestFraction float64
	SplitSeed    int64
	PlotPath     string

	Log LogConfig
}

// ServeConfig holds configuration of the prediction service
type ServeConfig struct {
	ModelPath       string
	Port            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log LogConfig
}

// loadDotEnv reads a .env file when present. A missing file is not an error.
func loadDotEnv(envPath ...string) error {
	path := ".env"
	if len(envPath) > 0 && envPath[0] != "" {
		path = envPath[0]
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("could not load env file %s: %w", path, err)
	}
	return nil
}

// LoadTrain reads training configuration from the environment (and .env)
func LoadTrain(envPath ...string) (*TrainConfig, error) {
	if err := loadDotEnv(envPath...); err != nil {
		return nil, err
	}

	cfg := &TrainConfig{
		DatasetPath:  os.Getenv("DATASET_FILENAME"),
		ModelPath:    os.Getenv("MODEL_FILENAME"),
		CleanCSVPath: getEnv("CLEAN_CSV_PATH", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBRetries:    getEnvInt("DB_RETRIES", 3),
		TestFraction: getEnvFloat("TEST_FRACTION", 0),
		SplitSeed:    int64(getEnvInt("SPLIT_SEED", 42)),
		PlotPath:     getEnv("PLOT_PATH", ""),
		Log:          loadLog(),
	}

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: set MODEL_FILENAME in .env", ErrMissingSetting)
	}
	if cfg.DatasetPath == "" {
		return nil, fmt.Errorf("%w: set DATASET_FILENAME in .env", ErrMissingSetting)
	}
	if cfg.TestFraction < 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("TEST_FRACTION must be in [0, 1), got %v", cfg.TestFraction)
	}
	return cfg, nil
}

// LoadServe reads service configuration from the environment (and .env)
func LoadServe(envPath ...string) (*ServeConfig, error) {
	if err := loadDotEnv(envPath...); err != nil {
		return nil, err
	}

	cfg := &ServeConfig{
		ModelPath:       os.Getenv("MODEL_FILENAME"),
		Port:            getEnv("PORT", "8000"),
		ReadTimeout:     time.Duration(getEnvInt("READ_TIMEOUT_SEC", 10)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SEC", 15)) * time.Second,
		Log:             loadLog(),
	}

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: set MODEL_FILENAME in .env", ErrMissingSetting)
	}
	return cfg, nil
}

func loadLog() LogConfig {
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
