package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/lidar-odometry/internal/odom"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root tuning schema for the odometry core. Fields are
// pointers so partial JSON files are safe: anything omitted keeps its
// default via the Get* accessors.
type TuningConfig struct {
	// Solver params
	ScanPeriod    *float64 `json:"scan_period,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
	DeltaRAbort   *float64 `json:"delta_r_abort,omitempty"`
	DeltaTAbort   *float64 `json:"delta_t_abort,omitempty"`

	// Export params
	IORatio *int `json:"io_ratio,omitempty"`

	// RawCorrespondenceQueries matches correspondence queries on raw points
	// rather than de-skewed ones, reproducing upstream LOAM's numerical
	// output.
	RawCorrespondenceQueries *bool `json:"raw_correspondence_queries,omitempty"`
}

// Load reads a TuningConfig from a JSON file. The path must carry a .json
// extension and the file must be under the size cap.
func Load(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.ScanPeriod != nil && *c.ScanPeriod <= 0 {
		return fmt.Errorf("scan_period must be positive, got %f", *c.ScanPeriod)
	}
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", *c.MaxIterations)
	}
	if c.DeltaRAbort != nil && *c.DeltaRAbort < 0 {
		return fmt.Errorf("delta_r_abort must be non-negative, got %f", *c.DeltaRAbort)
	}
	if c.DeltaTAbort != nil && *c.DeltaTAbort < 0 {
		return fmt.Errorf("delta_t_abort must be non-negative, got %f", *c.DeltaTAbort)
	}
	if c.IORatio != nil && *c.IORatio < 1 {
		return fmt.Errorf("io_ratio must be at least 1, got %d", *c.IORatio)
	}
	return nil
}

// GetScanPeriod returns the scan_period value or the default.
func (c *TuningConfig) GetScanPeriod() float64 {
	if c.ScanPeriod == nil {
		return 0.1 // 10 Hz sensor
	}
	return *c.ScanPeriod
}

// GetMaxIterations returns the max_iterations value or the default.
func (c *TuningConfig) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return 25
	}
	return *c.MaxIterations
}

// GetDeltaRAbort returns the delta_r_abort value (degrees) or the default.
func (c *TuningConfig) GetDeltaRAbort() float64 {
	if c.DeltaRAbort == nil {
		return 0.1
	}
	return *c.DeltaRAbort
}

// GetDeltaTAbort returns the delta_t_abort value (centimetres) or the default.
func (c *TuningConfig) GetDeltaTAbort() float64 {
	if c.DeltaTAbort == nil {
		return 0.1
	}
	return *c.DeltaTAbort
}

// GetIORatio returns the io_ratio value or the default.
func (c *TuningConfig) GetIORatio() int {
	if c.IORatio == nil {
		return 2
	}
	return *c.IORatio
}

// GetRawCorrespondenceQueries returns the raw_correspondence_queries value or
// the default.
func (c *TuningConfig) GetRawCorrespondenceQueries() bool {
	if c.RawCorrespondenceQueries == nil {
		return false
	}
	return *c.RawCorrespondenceQueries
}

// Params materialises the odometry tuning parameters.
func (c *TuningConfig) Params() odom.Params {
	return odom.Params{
		ScanPeriod:    c.GetScanPeriod(),
		MaxIterations: c.GetMaxIterations(),
		DeltaRAbort:   c.GetDeltaRAbort(),
		DeltaTAbort:   c.GetDeltaTAbort(),
		IORatio:       c.GetIORatio(),
		RawQueries:    c.GetRawCorrespondenceQueries(),
	}
}
