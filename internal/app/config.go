package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PackageDir   string // source package root
	ManifestName string // build manifest filename, resolved inside PackageDir

	Output    string // published directory; empty defers to the manifest or default
	Workers   int    // scheduler pool size; 0 defers to the manifest or default
	Watch     bool   // rebuild on source changes instead of exiting
	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it ready for use.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PackageDir == "" {
		return nil, errors.New("PackageDir is a required configuration field and cannot be empty")
	}
	if cfg.ManifestName == "" {
		return nil, errors.New("ManifestName is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, errors.New("Workers cannot be negative")
	}

	return &cfg, nil
}
