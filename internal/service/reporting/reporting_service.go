package reporting

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/chart"
	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/service/aggregate"
	"github.com/mamadbah2/ceqc/internal/service/query"
)

// Chart names, also used as file names by the scheduler.
const (
	ChartSlump         = "slump"
	ChartAir           = "air"
	ChartBolts         = "bolts"
	ChartStrength      = "strength"
	ChartStrengthCurve = "strength-curve"
)

// ErrUnknownChart is returned when a chart name is not one of the report's.
var ErrUnknownChart = errors.New("unknown chart")

var chartNames = []string{ChartSlump, ChartAir, ChartBolts, ChartStrength, ChartStrengthCurve}

// Snapshotter reads all three collections at once.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// Options configures chart rendering.
type Options struct {
	Limits          config.LimitsConfig
	Chart           config.ChartConfig
	ReferenceCurves []config.ReferenceCurve
	Theme           chart.Theme
}

// Service assembles reports for a date range.
type Service struct {
	repo   Snapshotter
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(repository Snapshotter, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Theme == (chart.Theme{}) {
		opts.Theme = chart.DefaultTheme()
	}
	return &Service{repo: repository, opts: opts, logger: logger, now: time.Now}
}

// Build reads one snapshot and derives every number and chart of the report
// from it. A canceled context aborts between charts and returns no report.
func (s *Service) Build(ctx context.Context, r query.Range) (*models.Report, error) {
	return s.build(ctx, r, "")
}

// BuildChart renders a single named chart for the range. The numbers come
// from the same snapshot pass as Build, but only that chart is drawn.
func (s *Service) BuildChart(ctx context.Context, r query.Range, name string) (models.ChartImage, error) {
	if !slices.Contains(chartNames, name) {
		return models.ChartImage{}, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	report, err := s.build(ctx, r, name)
	if err != nil {
		return models.ChartImage{}, err
	}
	img, _ := report.Chart(name)
	return img, nil
}

// build assembles the report. When only is set, just that chart is drawn.
func (s *Service) build(ctx context.Context, r query.Range, only string) (*models.Report, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	slump := query.Filter(snap.Slump, r)
	resist := query.Filter(snap.Resist, r)
	pernos := query.Filter(snap.Pernos, r)

	slumpGroups := aggregate.GroupByLocation(slump)
	resistGroups := aggregate.GroupByLocation(resist)
	pernosGroups := aggregate.GroupByLocation(pernos)

	slumpSeries := aggregate.MeansByLocation(slumpGroups, aggregate.SlumpValue)
	airSeries := aggregate.MeansByLocation(airOnly(slumpGroups), aggregate.AirPressure)
	boltSeries := aggregate.SumsByLocation(pernosGroups, aggregate.Bolts)
	strengthSeries := aggregate.MeansByLocation(resistGroups, aggregate.Strength)

	report := &models.Report{
		From:               r.From,
		To:                 r.To,
		Caption:            r.Caption(),
		GeneratedAt:        s.now(),
		SlumpCount:         len(slump),
		ResistCount:        len(resist),
		PernosCount:        len(pernos),
		OutOfRange:         countOutOfRange(slump),
		SlumpByLocation:    slumpSeries.LocationValues(),
		AirByLocation:      airSeries.LocationValues(),
		BoltsByLocation:    boltSeries.LocationValues(),
		StrengthByLocation: strengthSeries.LocationValues(),
		Slump:              aggregate.Summarize(slump, aggregate.SlumpValue),
		Air:                aggregate.Summarize(slump, aggregate.AirPressure),
		Temperature:        aggregate.Summarize(slump, aggregate.Temperature),
		Strength:           aggregate.Summarize(resist, aggregate.Strength),
		Bolts:              aggregate.BoltTotals(pernos),
	}

	limits := s.opts.Limits
	specs := []namedSpec{
		{ChartSlump, "Slump by location", s.spec(slumpSeries, "\"", chart.Lollipop, &chart.Band{
			Min:     limits.SlumpMin,
			Max:     limits.SlumpMax,
			Caption: fmt.Sprintf("Target %s-%s\"", models.FormatNumber(limits.SlumpMin), models.FormatNumber(limits.SlumpMax)),
		})},
		{ChartAir, "Air pressure by location", s.spec(airSeries, "", chart.Lollipop, nil)},
		{ChartBolts, "Bolts by location", s.spec(boltSeries, "", chart.Bar, nil)},
		{ChartStrength, "Strength by location", s.spec(strengthSeries, " MPa", chart.Bar, nil)},
	}

	for _, ns := range specs {
		if only != "" && ns.name != only {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build report: %w", err)
		}
		ns.spec.Caption = ns.title + " - " + report.Caption
		png, err := chart.PNG(ns.spec, s.opts.Theme)
		if err != nil {
			return nil, fmt.Errorf("render %s chart: %w", ns.name, err)
		}
		report.Charts = append(report.Charts, models.ChartImage{Name: ns.name, Title: ns.title, PNG: png})
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	if only == "" || only == ChartStrengthCurve {
		curve, err := s.strengthCurve(resist, report.Caption)
		if err != nil {
			return nil, err
		}
		report.Charts = append(report.Charts, curve)
	}

	report.Summary = Summarize(report)

	s.logger.Info("report built",
		zap.String("range", report.Caption),
		zap.Int("slump", report.SlumpCount),
		zap.Int("resist", report.ResistCount),
		zap.Int("pernos", report.PernosCount),
	)
	return report, nil
}

type namedSpec struct {
	name  string
	title string
	spec  chart.Spec
}

func (s *Service) spec(series aggregate.Series, unit string, mode chart.Mode, band *chart.Band) chart.Spec {
	return chart.Spec{
		Labels: series.Labels,
		Values: series.Values,
		Unit:   unit,
		Band:   band,
		Mode:   mode,
		Width:  s.opts.Chart.Width,
		Height: s.opts.Chart.Height,
	}
}

func (s *Service) strengthCurve(resist []models.ResistRecord, caption string) (models.ChartImage, error) {
	const title = "Strength development"

	spec := chart.StrengthSpec{
		Caption: title + " - " + caption,
		Width:   s.opts.Chart.Width,
		Height:  s.opts.Chart.Height,
	}
	for _, rc := range s.opts.ReferenceCurves {
		col, err := chart.ParseHex(rc.Color)
		if err != nil {
			s.logger.Warn("reference curve color ignored", zap.String("curve", rc.Name), zap.Error(err))
			col = s.opts.Theme.Muted
		}
		c := chart.Curve{Name: rc.Name, Color: col}
		for i := range rc.Hours {
			if i < len(rc.MPa) {
				c.Points = append(c.Points, chart.XY{X: rc.Hours[i], Y: rc.MPa[i]})
			}
		}
		spec.Curves = append(spec.Curves, c)
	}

	a := chart.Scatter{Name: "Method A", Color: methodAColor, Shape: chart.ShapeCircle}
	b := chart.Scatter{Name: "Method B", Color: methodBColor, Shape: chart.ShapeDiamond}
	for _, r := range resist {
		p := chart.XY{X: float64(r.AgeMinutes) / 60, Y: r.StrengthMPa}
		if r.Method == models.MethodB {
			b.Points = append(b.Points, p)
		} else {
			a.Points = append(a.Points, p)
		}
	}
	spec.Measured = []chart.Scatter{a, b}

	png, err := chart.StrengthPNG(spec, s.opts.Theme)
	if err != nil {
		return models.ChartImage{}, fmt.Errorf("render %s chart: %w", ChartStrengthCurve, err)
	}
	return models.ChartImage{Name: ChartStrengthCurve, Title: title, PNG: png}, nil
}

// airOnly drops records without an air pressure reading so per-location
// counts reflect readings, not visits.
func airOnly(g aggregate.Groups[models.SlumpRecord]) aggregate.Groups[models.SlumpRecord] {
	out := make(aggregate.Groups[models.SlumpRecord])
	for k, recs := range g {
		for _, r := range recs {
			if r.AirPressure != nil {
				out[k] = append(out[k], r)
			}
		}
	}
	return out
}

func countOutOfRange(records []models.SlumpRecord) int {
	n := 0
	for _, r := range records {
		if !r.WithinRange {
			n++
		}
	}
	return n
}
