package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/repository/sqlite"
	"github.com/mamadbah2/ceqc/internal/service/query"
)

var testLimits = config.LimitsConfig{SlumpMin: 8, SlumpMax: 11}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "qc.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	delay := 20
	_, err := store.InsertSlump(ctx, models.SlumpRecord{
		Date: "2024-05-14", Time: "08:00", Labor: "TJ-450", SlumpIn: 9.75, SlumpText: `9 3/4"`,
		Departure: "07:40", Arrival: "08:00", DelayMin: &delay, WithinRange: true,
	})
	require.NoError(t, err)
	_, err = store.InsertResist(ctx, []models.ResistRecord{{
		Date: "2024-05-14", Labor: "TJ-450", Method: models.MethodB, Curve: "default",
		AgeMinutes: 30, StrengthMPa: 0.6,
		Nails: []models.NailReading{{NailLength: 60, ExposedLength: 20, Force: 80}},
	}})
	require.NoError(t, err)
	_, err = store.InsertPernos(ctx, models.PernosRecord{Date: "2024-05-14", Labor: "TJ-450", Helical: 4, Friction: 2})
	require.NoError(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	seed(t, store)

	svc := NewService(store, testLimits, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, svc.WriteJSON(ctx, &buf))

	var doc models.ExportDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 3, doc.Len())
	assert.True(t, doc.ExportedAt.Equal(time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC)))

	res, err := svc.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Slump: 1, Resist: 1, Pernos: 1}, res)
	assert.Equal(t, 3, res.Total())

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, snap.Len())
	assert.NotEqual(t, snap.Slump[0].ID, snap.Slump[1].ID)
	assert.Equal(t, snap.Slump[0].SlumpText, snap.Slump[1].SlumpText)
	require.NotNil(t, snap.Slump[1].DelayMin)
	assert.Equal(t, 20, *snap.Slump[1].DelayMin)
}

func TestExportEmptyStoreUsesArrays(t *testing.T) {
	svc := NewService(openStore(t), testLimits, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteJSON(context.Background(), &buf))
	assert.Contains(t, buf.String(), `"slump": []`)
	assert.Contains(t, buf.String(), `"pernos": []`)
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	svc := NewService(store, testLimits, nil)

	_, err := svc.Import(ctx, strings.NewReader("{not json"))
	var rej *models.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "file", rej.Field)

	_, err = svc.Import(ctx, strings.NewReader(`{"slump":[{"fecha":"2024-05-14","slumpRaw":"9"},{"fecha":"14/05/2024","slumpRaw":"9"}]}`))
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "slump[1].fecha", rej.Field)

	_, err = svc.Import(ctx, strings.NewReader(`{"resist":[{"fecha":"2024-05-14","metodo":"C"}]}`))
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "resist[0].metodo", rej.Field)

	_, err = svc.Import(ctx, strings.NewReader(`{"slump":[{"fecha":"2024-05-14","slumpRaw":"9"},{"fecha":"2024-05-14","slumpRaw":"abc"}]}`))
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "slump[1].slumpRaw", rej.Field)

	_, err = svc.Import(ctx, strings.NewReader(`{"pernos":[{"fecha":"2024-05-14","hora":"9h05"}]}`))
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "pernos[0].hora", rej.Field)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
}

func TestImportRederivesSlumpFields(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	svc := NewService(store, testLimits, nil)

	doc := `{"slump":[
		{"fecha":"2024-05-14","hora":"10:00","labor":"TJ-450","slumpRaw":"9","slumpIn":2,"slumpText":"nonsense","enRango":false},
		{"fecha":"2024-05-14","hora":"9:05","labor":"TJ-450","slumpText":"7 1/2\"","enRango":true,"hs":"8:50","hll":"9:05","demoraMin":999},
		{"fecha":"2024-05-14","labor":"CX-200","slumpRaw":"10","demoraMin":5}
	]}`
	res, err := svc.Import(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Slump)

	recs, err := store.ListSlump(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, 9.0, recs[0].SlumpIn)
	assert.Equal(t, `9"`, recs[0].SlumpText)
	assert.True(t, recs[0].WithinRange)

	assert.Equal(t, "09:05", recs[1].Time)
	assert.Equal(t, `7 1/2"`, recs[1].SlumpRaw)
	assert.Equal(t, 7.5, recs[1].SlumpIn)
	assert.False(t, recs[1].WithinRange)
	assert.Equal(t, "08:50", recs[1].Departure)
	require.NotNil(t, recs[1].DelayMin)
	assert.Equal(t, 15, *recs[1].DelayMin)

	assert.Nil(t, recs[2].DelayMin)

	ordered := query.Filter(recs, query.All)
	require.Len(t, ordered, 3)
	assert.Equal(t, "", ordered[0].Time)
	assert.Equal(t, "09:05", ordered[1].Time)
	assert.Equal(t, "10:00", ordered[2].Time)
}

func TestWorkbookHasOneSheetPerCollection(t *testing.T) {
	store := openStore(t)
	seed(t, store)
	svc := NewService(store, testLimits, nil)

	data, err := svc.Workbook(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Slump", "Strength", "Bolts"}, f.GetSheetList())

	rows, err := f.GetRows("Slump")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "TJ-450", rows[1][2])
	assert.Equal(t, "Yes", rows[1][13])

	nails, err := f.GetCellValue("Strength", "L2")
	require.NoError(t, err)
	assert.Equal(t, "60/20/80", nails)

	total, err := f.GetCellValue("Bolts", "G2")
	require.NoError(t, err)
	assert.Equal(t, "6", total)
}
