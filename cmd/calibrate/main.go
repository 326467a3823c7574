package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"aimtrainer/internal/bot"
	"aimtrainer/internal/calibration"
	"aimtrainer/internal/config"
)

// calibrate plays a headless calibration session with the scripted bot and
// prints the delimited results block on stdout. Progress goes to stderr.
func main() {
	log.SetOutput(os.Stderr)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := calibration.DefaultConfig()
	rc.Scenarios = cfg.CalibrationScenarios
	rc.Duration = cfg.CalibrationDuration
	rc.Step = cfg.Step()
	rc.Seed = cfg.Seed
	rc.Verbose = true

	log.Printf("[Calibration] Session setup: %d scenarios of %s\n", rc.Scenarios, rc.Duration)
	runner := calibration.NewRunner(rc, bot.NewAimbot(cfg.BotSkill))
	results, err := runner.Run(ctx)
	if err != nil {
		log.Printf("[Calibration] %v\n", err)
	}

	log.Printf("[Calibration] Calibration finished. Outputting results...\n")
	if err := calibration.WriteResults(os.Stdout, results); err != nil {
		log.Printf("[Calibration] %v\n", err)
	}
}
