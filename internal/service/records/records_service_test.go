package records

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/repository/sqlite"
	"github.com/mamadbah2/ceqc/internal/service/calibration"
	"github.com/mamadbah2/ceqc/internal/service/query"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "qc.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	table, err := calibration.NewTable(config.CalibrationConfig{
		ReadingsA: 10,
		ReadingsB: 5,
		Curves: []config.CurveConfig{
			{Method: "A", Curve: "default", A: 0.1, B: 0},
			{Method: "B", Curve: "default", A: 1, B: 0},
		},
	})
	require.NoError(t, err)

	return NewService(store, table, config.LimitsConfig{SlumpMin: 8, SlumpMax: 11}, zap.NewNop()), store
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

func countAll(t *testing.T, store *sqlite.Store) int {
	t.Helper()
	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	return snap.Len()
}

func TestSubmitSlump_DerivedFields(t *testing.T) {
	svc, _ := newTestService(t)
	temp := 19.0

	rec, err := svc.SubmitSlump(context.Background(), models.SlumpInput{
		Date:      "2024-05-14",
		Time:      "7:05",
		Labor:     "  TJ-450 ",
		Slump:     "9 3/4",
		TempC:     &temp,
		Departure: "23:50",
		Arrival:   "0:10",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "07:05", rec.Time)
	assert.Equal(t, "TJ-450", rec.Labor)
	assert.Equal(t, 9.75, rec.SlumpIn)
	assert.Equal(t, `9 3/4"`, rec.SlumpText)
	assert.Equal(t, "9 3/4", rec.SlumpRaw)
	assert.True(t, rec.WithinRange)
	require.NotNil(t, rec.DelayMin)
	assert.Equal(t, 20, *rec.DelayMin)
	assert.Equal(t, "00:10", rec.Arrival)
}

func TestSubmitSlump_OutOfRangeAndNoDelay(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.SubmitSlump(context.Background(), models.SlumpInput{Date: "2024-05-14", Slump: "7/8", Departure: "08:00"})
	require.NoError(t, err)
	assert.False(t, rec.WithinRange)
	assert.Nil(t, rec.DelayMin)
}

func TestSubmitSlump_Rejections(t *testing.T) {
	svc, store := newTestService(t)
	neg := -1.0

	cases := map[string]models.SlumpInput{
		"fecha":       {Date: "14/05/2024", Slump: "9"},
		"slump":       {Date: "2024-05-14", Slump: "nine"},
		"horaSlump":   {Date: "2024-05-14", Slump: "9", Time: "25:00"},
		"presionAire": {Date: "2024-05-14", Slump: "9", AirPressure: &neg},
	}
	for field, in := range cases {
		_, err := svc.SubmitSlump(context.Background(), in)
		var rej *models.RejectionError
		require.True(t, errors.As(err, &rej), field)
		assert.Equal(t, field, rej.Field)
	}
	assert.Zero(t, countAll(t, store))
}

func TestSubmitResistA(t *testing.T) {
	svc, store := newTestService(t)

	rec, err := svc.SubmitResistA(context.Background(), models.ResistAInput{
		Date: "2024-05-14", Labor: "TJ-450", AgeMinutes: 90, Readings: readings(10, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MethodA, rec.Method)
	assert.Equal(t, "default", rec.Curve)
	assert.Equal(t, "1 h 30 min", rec.AgeLabel)
	assert.InDelta(t, 20, rec.ReadingMean, 1e-9)
	assert.InDelta(t, 2, rec.StrengthMPa, 1e-9)

	_, err = svc.SubmitResistA(context.Background(), models.ResistAInput{
		Date: "2024-05-14", Labor: "TJ-450", Readings: readings(9, 20),
	})
	require.ErrorIs(t, err, models.ErrRejected)
	assert.Contains(t, err.Error(), "exactly 10 readings")

	assert.Equal(t, 1, countAll(t, store))
}

func TestSubmitResistB_AllOrNothing(t *testing.T) {
	svc, store := newTestService(t)

	bad := nails(5, 60, 20, 80)
	bad[4].ExposedLength = 70
	_, err := svc.SubmitResistB(context.Background(), models.ResistBInput{
		Date:  "2024-05-14",
		Labor: "TJ-450",
		Checkpoints: []models.Checkpoint{
			{AgeMinutes: 30, Nails: nails(5, 60, 20, 80)},
			{AgeMinutes: 60, Nails: bad},
		},
	})
	require.ErrorIs(t, err, models.ErrRejected)
	assert.Zero(t, countAll(t, store))

	recs, err := svc.SubmitResistB(context.Background(), models.ResistBInput{
		Date:  "2024-05-14",
		Labor: "TJ-450",
		Checkpoints: []models.Checkpoint{
			{AgeMinutes: 30, Time: "8:30", Nails: nails(5, 60, 20, 80)},
			{AgeMinutes: 120, AgeLabel: "2 hours", Nails: nails(5, 60, 40, 80)},
		},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "08:30", recs[0].Time)
	assert.Equal(t, "30 min", recs[0].AgeLabel)
	assert.Equal(t, "2 hours", recs[1].AgeLabel)
	assert.InDelta(t, 2, recs[0].StrengthMPa, 1e-9)
	assert.InDelta(t, 4, recs[1].StrengthMPa, 1e-9)
	assert.Equal(t, 2, countAll(t, store))
}

func TestSubmitPernos(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.SubmitPernos(context.Background(), models.PernosInput{Date: "2024-05-14", Labor: "TJ-450"})
	assert.ErrorIs(t, err, models.ErrRejected)
	_, err = svc.SubmitPernos(context.Background(), models.PernosInput{Date: "2024-05-14", Helical: 3, Friction: -1})
	assert.ErrorIs(t, err, models.ErrRejected)
	assert.Zero(t, countAll(t, store))

	rec, err := svc.SubmitPernos(context.Background(), models.PernosInput{Date: "2024-05-14", Labor: "TJ-450", Helical: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Helical)
}

func TestListDeleteClear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.SubmitSlump(ctx, models.SlumpInput{Date: "2024-05-14", Time: "10:00", Slump: "9"})
	require.NoError(t, err)
	_, err = svc.SubmitSlump(ctx, models.SlumpInput{Date: "2024-05-14", Time: "08:00", Slump: "10"})
	require.NoError(t, err)
	_, err = svc.SubmitSlump(ctx, models.SlumpInput{Date: "2024-05-15", Slump: "11"})
	require.NoError(t, err)

	day, err := svc.ListSlump(ctx, query.Day("2024-05-14"))
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "08:00", day[0].Time)

	_, err = svc.ListSlump(ctx, query.Range{From: "2024-05-15", To: "2024-05-14"})
	assert.ErrorIs(t, err, models.ErrRejected)

	assert.ErrorIs(t, svc.Delete(ctx, models.CollectionSlump, " "), models.ErrRejected)
	assert.ErrorIs(t, svc.Delete(ctx, models.CollectionSlump, "nope"), sqlite.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, models.CollectionSlump, first.ID))

	all, err := svc.ListSlump(ctx, query.All)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Clear(ctx, models.CollectionSlump))
	all, err = svc.ListSlump(ctx, query.All)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.SubmitPernos(ctx, models.PernosInput{Date: "2024-05-14", Friction: 2})
	require.NoError(t, err)
	require.NoError(t, svc.ClearAll(ctx))
	pernos, err := svc.ListPernos(ctx, query.All)
	require.NoError(t, err)
	assert.Empty(t, pernos)

	resist, err := svc.ListResist(ctx, query.All)
	require.NoError(t, err)
	assert.Empty(t, resist)
}
