package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedCalibrationMatchesDefaults(t *testing.T) {
	cfg, err := LoadCalibration("../../configs/calibration.example.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultCalibration(), cfg)
}
