package device

import "time"

// Timing defaults. These mirror the shipped firmware and are
// configuration, not physical constraints.
const (
	DefaultMinStepInterval   = 20 * time.Millisecond  // speed 1
	DefaultMaxStepInterval   = 100 * time.Millisecond // speed 5
	DefaultTelemetryInterval = 100 * time.Millisecond
	DefaultStartupSettle     = 500 * time.Millisecond
)

// Config has the timing and positioning values for the control loop.
// Zero fields take the defaults above.
type Config struct {
	// MinStepInterval is the per-degree step period at speed 1 (fastest).
	MinStepInterval time.Duration
	// MaxStepInterval is the per-degree step period at speed 5 (slowest).
	MaxStepInterval time.Duration
	// TelemetryInterval is the heartbeat report period.
	TelemetryInterval time.Duration
	// InitialAngle is commanded at startup.
	InitialAngle int
	// StartupSettle is how long Settle blocks to let the actuator
	// reach InitialAngle before the loop starts.
	StartupSettle time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.MinStepInterval == 0 {
		cfg.MinStepInterval = DefaultMinStepInterval
	}
	if cfg.MaxStepInterval == 0 {
		cfg.MaxStepInterval = DefaultMaxStepInterval
	}
	if cfg.TelemetryInterval == 0 {
		cfg.TelemetryInterval = DefaultTelemetryInterval
	}
	if cfg.InitialAngle == 0 {
		cfg.InitialAngle = defaultInitialAngle
	}
	if cfg.StartupSettle == 0 {
		cfg.StartupSettle = DefaultStartupSettle
	}
	return cfg
}
