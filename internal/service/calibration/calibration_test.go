package calibration

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(config.CalibrationConfig{
		ReadingsA: 10,
		ReadingsB: 5,
		Curves: []config.CurveConfig{
			{Method: "A", Curve: "default", A: 0.5, B: 1},
			{Method: "A", Curve: "J2", A: 1, B: -100},
			{Method: "B", Curve: "default", A: 2, B: 0},
		},
	})
	require.NoError(t, err)
	return table
}

func readings(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func nails(n int, nail, exposed, force float64) []models.NailReading {
	out := make([]models.NailReading, n)
	for i := range out {
		out[i] = models.NailReading{NailLength: nail, ExposedLength: exposed, Force: force}
	}
	return out
}

func TestEstimateA_UsesMeanOfBatch(t *testing.T) {
	table := testTable(t)
	in := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	res, err := table.EstimateA("", in)
	require.NoError(t, err)
	assert.Equal(t, "default", res.Curve)
	assert.InDelta(t, 55, res.Mean, 1e-9)
	assert.InDelta(t, 0.5*55+1, res.Strength, 1e-9)
}

func TestEstimateA_ClampsAtZero(t *testing.T) {
	res, err := testTable(t).EstimateA("J2", readings(10, 5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Strength)
}

func TestEstimateA_WrongCountRejected(t *testing.T) {
	_, err := testTable(t).EstimateA("default", readings(9, 5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRejected))
	assert.Contains(t, err.Error(), "method A requires exactly 10 readings, got 9")
}

func TestEstimateA_BadReadingRejected(t *testing.T) {
	in := readings(10, 5)
	in[3] = -1
	_, err := testTable(t).EstimateA("default", in)
	require.ErrorIs(t, err, models.ErrRejected)
	assert.Contains(t, err.Error(), "reading 4")

	in[3] = math.NaN()
	_, err = testTable(t).EstimateA("default", in)
	assert.ErrorIs(t, err, models.ErrRejected)
}

func TestLookup_UnknownCurveRejected(t *testing.T) {
	_, err := testTable(t).EstimateA("J9", readings(10, 5))
	require.ErrorIs(t, err, models.ErrRejected)

	_, _, err = testTable(t).Lookup(models.MethodB, "J2")
	assert.ErrorIs(t, err, models.ErrRejected)
}

func TestEstimateB_RatioPerCheckpoint(t *testing.T) {
	res, err := testTable(t).EstimateB("default", []models.Checkpoint{
		{AgeMinutes: 30, Nails: nails(5, 60, 20, 80)},
		{AgeMinutes: 60, Nails: nails(5, 60, 40, 80)},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.InDelta(t, 2, res[0].RatioMean, 1e-9)
	assert.InDelta(t, 4, res[0].Strength, 1e-9)
	assert.InDelta(t, 4, res[1].RatioMean, 1e-9)
	assert.InDelta(t, 8, res[1].Strength, 1e-9)
}

func TestEstimateB_EmbedmentErrorAbortsBatch(t *testing.T) {
	bad := nails(5, 60, 20, 80)
	bad[2].ExposedLength = 60

	res, err := testTable(t).EstimateB("default", []models.Checkpoint{
		{AgeMinutes: 30, Nails: nails(5, 60, 20, 80)},
		{AgeMinutes: 60, AgeLabel: "1 h", Nails: bad},
	})
	require.Error(t, err)
	assert.Nil(t, res)

	var rej *models.RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "checkpoint 2 (1 h)", rej.Field)
	assert.Contains(t, rej.Message, "reading 3")
	assert.Contains(t, rej.Message, "embedment 0")
}

func TestEstimateB_WrongCountPerCheckpoint(t *testing.T) {
	_, err := testTable(t).EstimateB("default", []models.Checkpoint{
		{AgeMinutes: 90, Nails: nails(4, 60, 20, 80)},
	})
	var rej *models.RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "checkpoint 1 (1 h 30 min)", rej.Field)
	assert.Equal(t, "expected 5 readings, got 4", rej.Message)
}

func TestEstimateB_NoCheckpoints(t *testing.T) {
	_, err := testTable(t).EstimateB("default", nil)
	assert.ErrorIs(t, err, models.ErrRejected)
}

func TestNewTable_InvalidConfig(t *testing.T) {
	_, err := NewTable(config.CalibrationConfig{ReadingsA: 10, ReadingsB: 5})
	assert.Error(t, err)

	_, err = NewTable(config.CalibrationConfig{
		ReadingsA: 10, ReadingsB: 5,
		Curves: []config.CurveConfig{{Method: "C", Curve: "x"}},
	})
	assert.Error(t, err)
}

func TestDefaultCalibrationBuilds(t *testing.T) {
	table, err := NewTable(config.DefaultCalibration())
	require.NoError(t, err)
	assert.Equal(t, 10, table.ReadingsA())
	assert.Equal(t, 5, table.ReadingsB())
}
