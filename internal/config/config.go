package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the harness, read once at test start.
type Config struct {
	// Core settings
	HarnessName string
	OPCUAPort   int
	HealthPort  int

	// Tick scheduling
	TickInterval time.Duration

	// Seafloor synthesis
	SeafloorPattern int    // built-in pattern id
	PatternFile     string // optional YAML pattern, overrides the id
	MeanDepth       float64 // mean seafloor depth below the surface, m
	Amplitude       float64 // seafloor relief amplitude, m

	// Signal corruption
	NoiseMean     float64
	NoiseStdDev   float64
	OutlierRate   float64 // events per second
	OutlierMean   float64
	OutlierStdDev float64
	SensorDelay   time.Duration

	// Test sequence
	RangeTolerance float64 // pass/fail bound on range deviation, m
	TargetDepthA   float64 // first descend target, m below surface
	TargetDepthB   float64 // second descend target, m below surface
	TraverseDist1  float64 // first follow-bottom distance, m
	TraverseDist2  float64 // second follow-bottom distance, m
	PauseDuration  time.Duration
	VerticalSpeed  float64 // commanded and assumed vertical speed, m/s
	ForwardSpeed   float64 // commanded and assumed forward speed, m/s
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HarnessName: getEnvOrDefault("HARNESS_NAME", "RangeHold-HIL-01"),
		OPCUAPort:   getEnvAsIntOrDefault("OPCUA_PORT", 4840),
		HealthPort:  getEnvAsIntOrDefault("HEALTH_PORT", 8081),

		TickInterval: getDurationOrDefault("TICK_INTERVAL", 20*time.Millisecond),

		SeafloorPattern: getEnvAsIntOrDefault("SEAFLOOR_PATTERN", 5),
		PatternFile:     getEnvOrDefault("SEAFLOOR_PATTERN_FILE", ""),
		MeanDepth:       getEnvAsFloatOrDefault("SEAFLOOR_MEAN_DEPTH", 20.0),
		Amplitude:       getEnvAsFloatOrDefault("SEAFLOOR_AMPLITUDE", 2.0),

		NoiseMean:     getEnvAsFloatOrDefault("NOISE_MEAN", 0.0),
		NoiseStdDev:   getEnvAsFloatOrDefault("NOISE_STDDEV", 0.1),
		OutlierRate:   getEnvAsFloatOrDefault("OUTLIER_RATE", 0.2),
		OutlierMean:   getEnvAsFloatOrDefault("OUTLIER_MEAN", 10.0),
		OutlierStdDev: getEnvAsFloatOrDefault("OUTLIER_STDDEV", 2.0),
		SensorDelay:   getDurationOrDefault("SENSOR_DELAY", 200*time.Millisecond),

		RangeTolerance: getEnvAsFloatOrDefault("RANGE_TOLERANCE", 2.0),
		TargetDepthA:   getEnvAsFloatOrDefault("TARGET_DEPTH_A", 12.0),
		TargetDepthB:   getEnvAsFloatOrDefault("TARGET_DEPTH_B", 15.0),
		TraverseDist1:  getEnvAsFloatOrDefault("TRAVERSE_DIST_1", 8.0),
		TraverseDist2:  getEnvAsFloatOrDefault("TRAVERSE_DIST_2", 12.0),
		PauseDuration:  getDurationOrDefault("PAUSE_DURATION", 2*time.Second),
		VerticalSpeed:  getEnvAsFloatOrDefault("VERTICAL_SPEED", 0.5),
		ForwardSpeed:   getEnvAsFloatOrDefault("FORWARD_SPEED", 1.0),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
