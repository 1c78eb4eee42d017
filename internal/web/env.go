package web

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Env holds the web server settings read from the environment.
type Env struct {
	Port       string // PORT
	Sim        string // FLOWGRID_SIM, registry variant
	ConfigPath string // FLOWGRID_CONFIG, optional YAML grid config
	Step       time.Duration
	Interval   time.Duration
	LogLevel   string // LOG_LEVEL
}

// LoadEnv reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was loaded.
func LoadEnv(files ...string) (Env, bool, error) {
	loaded := godotenv.Load(files...) == nil

	env := Env{
		Port:       getEnvWithDefault("PORT", "8080"),
		Sim:        getEnvWithDefault("FLOWGRID_SIM", "flow"),
		ConfigPath: os.Getenv("FLOWGRID_CONFIG"),
		LogLevel:   getEnvWithDefault("LOG_LEVEL", "info"),
	}
	var err error
	if env.Interval, err = getEnvAsMillis("FLOWGRID_TICK_MS", 50); err != nil {
		return Env{}, loaded, err
	}
	if env.Step, err = getEnvAsMillis("FLOWGRID_STEP_MS", int(env.Interval/time.Millisecond)); err != nil {
		return Env{}, loaded, err
	}
	return env, loaded, nil
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return time.Duration(defaultValue) * time.Millisecond, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("environment variable %s must be a positive integer, got %q", key, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
