package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oceanbotics/rangehold-harness/internal/config"
	"github.com/oceanbotics/rangehold-harness/internal/harness"
	"github.com/oceanbotics/rangehold-harness/internal/health"
	"github.com/oceanbotics/rangehold-harness/internal/status"
	"github.com/oceanbotics/rangehold-harness/internal/synth"
	"github.com/oceanbotics/rangehold-harness/internal/telemetry"
	"github.com/oceanbotics/rangehold-harness/internal/vehicle"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
		}
	}()

	log.Info().Msg("Starting depth-hold HIL test harness")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("name", cfg.HarnessName).
		Dur("tick", cfg.TickInterval).
		Int("pattern", cfg.SeafloorPattern).
		Float64("mean_depth", cfg.MeanDepth).
		Float64("tolerance", cfg.RangeTolerance).
		Msg("Configuration loaded")

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Seafloor waveform: YAML pattern file overrides the built-in id.
	segments := synth.BuiltinPattern(cfg.SeafloorPattern)
	if cfg.PatternFile != "" {
		segments, err = synth.LoadPatternFile(cfg.PatternFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.PatternFile).Msg("Failed to load pattern file")
		}
		log.Info().Str("file", cfg.PatternFile).Int("segments", len(segments)).Msg("Custom seafloor pattern loaded")
	}
	waveform := synth.NewWaveform(segments, cfg.Amplitude)

	tick := cfg.TickInterval.Seconds()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pipeline := synth.NewPipeline(synth.CorruptionParams{
		NoiseMean:     cfg.NoiseMean,
		NoiseStdDev:   cfg.NoiseStdDev,
		OutlierRate:   cfg.OutlierRate,
		OutlierMean:   cfg.OutlierMean,
		OutlierStdDev: cfg.OutlierStdDev,
		Delay:         cfg.SensorDelay.Seconds(),
		TickInterval:  tick,
	}, rng)

	// Simulated vehicle standing in for the real hardware, starting just
	// below the surface.
	sub := vehicle.NewSimVehicle(vehicle.Position{Z: -1})

	messenger := status.NewMessenger(status.LogSink{Logger: log.Logger})
	runCtx := harness.NewContext(harness.TestConfig{
		SeafloorPattern: cfg.SeafloorPattern,
		MeanDepth:       cfg.MeanDepth,
		RangeTolerance:  cfg.RangeTolerance,
		TargetDepthA:    cfg.TargetDepthA,
		TargetDepthB:    cfg.TargetDepthB,
		TraverseDist1:   cfg.TraverseDist1,
		TraverseDist2:   cfg.TraverseDist2,
		PauseDuration:   cfg.PauseDuration.Seconds(),
		VerticalSpeed:   cfg.VerticalSpeed,
		ForwardSpeed:    cfg.ForwardSpeed,
	}, sub, sub, waveform, pipeline, messenger, log.Logger, tick)
	runner := harness.NewRunner(runCtx)

	log.Info().
		Str("run_id", runCtx.RunID.String()).
		Float64("period", waveform.TotalPeriod()).
		Msg("Run context created")

	// Start telemetry server
	telemetryServer := telemetry.NewServer(cfg.OPCUAPort, cfg.HarnessName)
	if err := telemetryServer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start telemetry server")
	}

	healthHandler := health.NewHandler()
	healthHandler.SetTelemetryReady(true)

	// Start HTTP server (health check)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/health/live", healthHandler.HandleLive)
	mux.HandleFunc("/health/ready", healthHandler.HandleReady)

	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HealthPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HealthPort).Msg("Starting HTTP server (health)")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Main tick loop
	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", cfg.TickInterval).Msg("Starting tick loop")

	passed := false
	lastStatus := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutdown signal received")
			break loop

		case now := <-ticker.C:
			// The simulated vehicle is the "hardware": step it first,
			// then run the harness tick against its fresh state.
			sub.Step(tick)
			done := runner.Step()

			telemetryServer.Publish(telemetry.Snapshot{
				SubDepth:       -runCtx.Pos.Z,
				SeafloorDepth:  runCtx.LastSeafloorDepth,
				TrueRange:      runCtx.LastTrueRange,
				CorruptedRange: runCtx.LastCorruptedRange,
				TestState:      runner.State().String(),
				VehicleMode:    sub.Mode().String(),
				Armed:          sub.Armed(),
				Elapsed:        runCtx.Elapsed,
				MaxDeviation:   runCtx.MaxDeviation,
			})

			if now.Sub(lastStatus) >= 10*time.Second {
				lastStatus = now
				log.Debug().
					Str("state", runner.State().String()).
					Float64("sub_depth", -runCtx.Pos.Z).
					Float64("true_range", runCtx.LastTrueRange).
					Float64("corrupted_range", runCtx.LastCorruptedRange).
					Msg("Harness tick")
			}

			if done {
				passed = runner.Passed()
				break loop
			}
		}
	}

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health server shutdown error")
	}
	if err := telemetryServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Telemetry server shutdown error")
	}

	if passed {
		log.Info().Msg("Harness stopped, test passed")
		return 0
	}
	log.Info().Msg("Harness stopped, test failed")
	return 1
}
