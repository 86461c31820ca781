package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CalibrationConfig is the strength calibration table plus the reference
// curves drawn on the strength development chart.
type CalibrationConfig struct {
	ReadingsA       int              `yaml:"readings_a"`
	ReadingsB       int              `yaml:"readings_b"`
	Curves          []CurveConfig    `yaml:"curves"`
	ReferenceCurves []ReferenceCurve `yaml:"reference_curves"`
}

// CurveConfig holds the linear coefficients for one (method, curve) pair:
// strength = A * predictor + B.
type CurveConfig struct {
	Method string  `yaml:"method"`
	Curve  string  `yaml:"curve"`
	A      float64 `yaml:"a"`
	B      float64 `yaml:"b"`
}

// ReferenceCurve is a strength development envelope, age in hours against MPa.
type ReferenceCurve struct {
	Name  string    `yaml:"name"`
	Hours []float64 `yaml:"hours"`
	MPa   []float64 `yaml:"mpa"`
	Color string    `yaml:"color"`
}

// DefaultCalibration returns the built-in table used when no file is given.
func DefaultCalibration() CalibrationConfig {
	return CalibrationConfig{
		ReadingsA: 10,
		ReadingsB: 5,
		Curves: []CurveConfig{
			{Method: "A", Curve: "default", A: 0.0385, B: 0.08},
			{Method: "B", Curve: "default", A: 0.0512, B: -0.35},
		},
		ReferenceCurves: []ReferenceCurve{
			{Name: "J1", Hours: []float64{0.10, 0.20, 1.0, 6.0, 24.0}, MPa: []float64{0.9, 0.1, 0.20, 0.7, 2.0}, Color: "#0ea5e9"},
			{Name: "J2", Hours: []float64{0.10, 1.0, 6.0, 24.0}, MPa: []float64{0.2, 0.5, 1.7, 5.0}, Color: "#22c55e"},
			{Name: "J3", Hours: []float64{0.10, 1.0, 6.0, 24.0}, MPa: []float64{0.5, 1.5, 5.0, 15.0}, Color: "#f97316"},
		},
	}
}

// LoadCalibration reads a YAML calibration file. An empty path yields the
// defaults; fields missing from the file keep their default values.
func LoadCalibration(path string) (CalibrationConfig, error) {
	cfg := DefaultCalibration()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CalibrationConfig{}, fmt.Errorf("read calibration file %s: %w", path, err)
	}

	var file CalibrationConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return CalibrationConfig{}, fmt.Errorf("parse calibration file %s: %w", path, err)
	}

	if file.ReadingsA != 0 {
		cfg.ReadingsA = file.ReadingsA
	}
	if file.ReadingsB != 0 {
		cfg.ReadingsB = file.ReadingsB
	}
	if len(file.Curves) > 0 {
		cfg.Curves = file.Curves
	}
	if len(file.ReferenceCurves) > 0 {
		cfg.ReferenceCurves = file.ReferenceCurves
	}
	return cfg, nil
}

// Validate checks batch sizes and curve definitions.
func (c CalibrationConfig) Validate() error {
	if c.ReadingsA <= 0 {
		return errors.New("RESIST_A_READINGS must be positive")
	}
	if c.ReadingsB <= 0 {
		return errors.New("RESIST_B_READINGS must be positive")
	}
	if len(c.Curves) == 0 {
		return errors.New("calibration table has no curves")
	}

	seen := make(map[string]struct{}, len(c.Curves))
	for _, curve := range c.Curves {
		if curve.Method != "A" && curve.Method != "B" {
			return fmt.Errorf("calibration curve %q: unknown method %q", curve.Curve, curve.Method)
		}
		if curve.Curve == "" {
			return fmt.Errorf("calibration curve for method %s has no name", curve.Method)
		}
		key := curve.Method + "/" + curve.Curve
		if _, dup := seen[key]; dup {
			return fmt.Errorf("calibration curve %s defined twice", key)
		}
		seen[key] = struct{}{}
	}

	for _, ref := range c.ReferenceCurves {
		if len(ref.Hours) != len(ref.MPa) {
			return fmt.Errorf("reference curve %s: %d ages but %d strengths", ref.Name, len(ref.Hours), len(ref.MPa))
		}
	}
	return nil
}
