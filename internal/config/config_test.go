package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "SCENARIO_DURATION", "SCENARIO_DELAY", "TICK_RATE",
		"SHOT_COOLDOWN_MS", "FOV_DEGREES", "RANDOM_SEED", "CALIBRATION_SCENARIOS",
		"CALIBRATION_DURATION", "BOT_SKILL", "VERBOSE",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "")
	}
	if cfg.ScenarioDuration != 30*time.Second {
		t.Errorf("ScenarioDuration = %v, want %v", cfg.ScenarioDuration, 30*time.Second)
	}
	if cfg.ScenarioDelay != 5*time.Second {
		t.Errorf("ScenarioDelay = %v, want %v", cfg.ScenarioDelay, 5*time.Second)
	}
	if cfg.ShotCooldown != 100*time.Millisecond {
		t.Errorf("ShotCooldown = %v, want %v", cfg.ShotCooldown, 100*time.Millisecond)
	}
	if cfg.CalibrationScenarios != 5 {
		t.Errorf("CalibrationScenarios = %d, want %d", cfg.CalibrationScenarios, 5)
	}
	if cfg.Step() != time.Second/60 {
		t.Errorf("Step() = %v, want %v", cfg.Step(), time.Second/60)
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
}

func TestFromEnv_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/aimtrainer")
	t.Setenv("SCENARIO_DURATION", "10")
	t.Setenv("TICK_RATE", "120")
	t.Setenv("FOV_DEGREES", "90.5")
	t.Setenv("BOT_SKILL", "0.8")
	t.Setenv("VERBOSE", "true")

	cfg := FromEnv()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/aimtrainer" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "postgres://localhost/aimtrainer")
	}
	if cfg.ScenarioDuration != 10*time.Second {
		t.Errorf("ScenarioDuration = %v, want %v", cfg.ScenarioDuration, 10*time.Second)
	}
	if cfg.Step() != time.Second/120 {
		t.Errorf("Step() = %v, want %v", cfg.Step(), time.Second/120)
	}
	if cfg.FOVDegrees != 90.5 {
		t.Errorf("FOVDegrees = %f, want %f", cfg.FOVDegrees, 90.5)
	}
	if cfg.BotSkill != 0.8 {
		t.Errorf("BotSkill = %f, want %f", cfg.BotSkill, 0.8)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be true")
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCENARIO_DURATION", "abc")
	t.Setenv("TICK_RATE", "-5")
	t.Setenv("VERBOSE", "maybe")

	cfg := FromEnv()

	if cfg.ScenarioDuration != 30*time.Second {
		t.Errorf("ScenarioDuration = %v, want %v (fallback)", cfg.ScenarioDuration, 30*time.Second)
	}
	if cfg.TickRate != 60 {
		t.Errorf("TickRate = %d, want %d (fallback)", cfg.TickRate, 60)
	}
	if cfg.Verbose {
		t.Error("Verbose should fall back to false")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	os.Unsetenv("RANDOM_SEED")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9999\nRANDOM_SEED=42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("RANDOM_SEED")
	})

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9999")
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want %d", cfg.Seed, 42)
	}
}

func TestLoad_MissingDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
}
