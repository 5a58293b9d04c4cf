package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by AIRLOCK_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("AIRLOCK_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// RecorderPath returns the SQLite file for the event recorder.
// Empty disables recording.
func RecorderPath() string {
	return os.Getenv("RECORDER_PATH")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

func positiveFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// MeetingIntervalSeconds is the default play time between automatic
// meetings. Defaults to 60.
func MeetingIntervalSeconds() float64 {
	return positiveFloat("MEETING_INTERVAL_SECONDS", 60)
}

// StatementSliceSeconds is the default speaking slot length during the
// statements phase of a meeting. Defaults to 2.
func StatementSliceSeconds() float64 {
	return positiveFloat("STATEMENT_SLICE_SECONDS", 2)
}

// VotingWindowSeconds is the default length of the voting phase.
// Defaults to 10.
func VotingWindowSeconds() float64 {
	return positiveFloat("VOTING_WINDOW_SECONDS", 10)
}

// ResolutionDelaySeconds is the default delay before a closed vote
// resolves. Defaults to 3.
func ResolutionDelaySeconds() float64 {
	return positiveFloat("RESOLUTION_DELAY_SECONDS", 3)
}
