package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	ScenarioDuration time.Duration
	ScenarioDelay    time.Duration
	TickRate         int // frames per second for simulated sessions
	ShotCooldown     time.Duration
	FOVDegrees       float32
	Seed             int64

	CalibrationScenarios int
	CalibrationDuration  time.Duration
	BotSkill             float32
	Verbose              bool
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] Could not read .env: %v\n", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		ScenarioDuration:     time.Duration(getEnvInt("SCENARIO_DURATION", 30)) * time.Second,
		ScenarioDelay:        time.Duration(getEnvInt("SCENARIO_DELAY", 5)) * time.Second,
		TickRate:             getEnvInt("TICK_RATE", 60),
		ShotCooldown:         time.Duration(getEnvInt("SHOT_COOLDOWN_MS", 100)) * time.Millisecond,
		FOVDegrees:           float32(getEnvFloat("FOV_DEGREES", 70)),
		Seed:                 int64(getEnvInt("RANDOM_SEED", 1)),
		CalibrationScenarios: getEnvInt("CALIBRATION_SCENARIOS", 5),
		CalibrationDuration:  time.Duration(getEnvInt("CALIBRATION_DURATION", 30)) * time.Second,
		BotSkill:             float32(getEnvFloat("BOT_SKILL", 0.35)),
		Verbose:              getEnvBool("VERBOSE", false),
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	return cfg
}

// Step is the simulated frame length for the configured tick rate.
func (c Config) Step() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
