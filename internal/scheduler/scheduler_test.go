package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/service/query"
	"github.com/mamadbah2/ceqc/pkg/clients/notify"
)

type fakeBuilder struct {
	ranges []query.Range
	err    error
}

func (f *fakeBuilder) Build(_ context.Context, r query.Range) (*models.Report, error) {
	f.ranges = append(f.ranges, r)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Report{
		From:        r.From,
		To:          r.To,
		Caption:     r.Caption(),
		GeneratedAt: time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC),
		Charts:      []models.ChartImage{{Name: "slump", PNG: []byte("png")}},
		Summary:     []string{"Range: " + r.Caption()},
	}, nil
}

type fakeNotifier struct {
	sent []notify.ReportMessage
	err  error
}

func (f *fakeNotifier) SendReport(_ context.Context, msg notify.ReportMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func testConfig(t *testing.T) config.ReportingConfig {
	return config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC", OutputDir: t.TempDir()}
}

func TestRunDayArchivesAndNotifies(t *testing.T) {
	cfg := testConfig(t)
	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}

	s, err := NewScheduler(cfg, builder, notifier, zap.NewNop())
	require.NoError(t, err)

	dir, err := s.RunDay(context.Background(), "2024-05-14")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "2024-05-14"), dir)
	assert.FileExists(t, filepath.Join(dir, "slump.png"))
	assert.FileExists(t, filepath.Join(dir, "summary.txt"))

	require.Equal(t, []query.Range{query.Day("2024-05-14")}, builder.ranges)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Daily QC report 2024-05-14", notifier.sent[0].Title)
	assert.Equal(t, dir, notifier.sent[0].Location)
	assert.Equal(t, "2024-05-14T20:00:00Z", notifier.sent[0].Generated)
}

func TestRunDayDeliveryFailureIsNotFatal(t *testing.T) {
	s, err := NewScheduler(testConfig(t), &fakeBuilder{}, &fakeNotifier{err: errors.New("webhook down")}, nil)
	require.NoError(t, err)

	_, err = s.RunDay(context.Background(), "2024-05-14")
	assert.NoError(t, err)
}

func TestRunDayWithoutNotifier(t *testing.T) {
	s, err := NewScheduler(testConfig(t), &fakeBuilder{}, nil, nil)
	require.NoError(t, err)

	_, err = s.RunDay(context.Background(), "2024-05-14")
	assert.NoError(t, err)
}

func TestRunDayBuildError(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(t), &fakeBuilder{err: errors.New("storage failure")}, notifier, nil)
	require.NoError(t, err)

	_, err = s.RunDay(context.Background(), "2024-05-14")
	assert.ErrorContains(t, err, "build report")
	assert.Empty(t, notifier.sent)
}

func TestRunDailyUsesLocalDay(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "America/Lima"
	builder := &fakeBuilder{}

	s, err := NewScheduler(cfg, builder, nil, nil)
	require.NoError(t, err)
	// 02:00 UTC is still the previous evening in Lima
	s.now = func() time.Time { return time.Date(2024, 5, 15, 2, 0, 0, 0, time.UTC) }

	s.runDaily()
	require.Len(t, builder.ranges, 1)
	assert.Equal(t, query.Day("2024-05-14"), builder.ranges[0])
}

func TestStartAndStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig(t)
	cfg.CronSchedule = ""
	s, err := NewScheduler(cfg, &fakeBuilder{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()

	cfg.CronSchedule = "not a schedule"
	s, err = NewScheduler(cfg, &fakeBuilder{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())

	cfg.CronSchedule = "0 20 * * *"
	s, err = NewScheduler(cfg, &fakeBuilder{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestNewSchedulerBadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Mars/Olympus_Mons"
	_, err := NewScheduler(cfg, &fakeBuilder{}, nil, nil)
	assert.Error(t, err)
}
