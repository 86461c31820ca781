package records

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/repository/sqlite"
	"github.com/mamadbah2/ceqc/internal/service/calibration"
	"github.com/mamadbah2/ceqc/internal/service/query"
)

// Service validates form submissions, derives computed fields and persists
// the resulting records. A rejected submission never writes anything.
type Service struct {
	repo   sqlite.Repository
	table  *calibration.Table
	limits config.LimitsConfig
	logger *zap.Logger
}

// NewService constructs the intake service.
func NewService(repository sqlite.Repository, table *calibration.Table, limits config.LimitsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, table: table, limits: limits, logger: logger}
}

// SubmitSlump parses the slump string, computes the delivery delay and the
// range flag, and stores the record.
func (s *Service) SubmitSlump(ctx context.Context, in models.SlumpInput) (models.SlumpRecord, error) {
	rec, err := s.buildSlumpRecord(in)
	if err != nil {
		return models.SlumpRecord{}, err
	}
	saved, err := s.repo.InsertSlump(ctx, rec)
	if err != nil {
		return models.SlumpRecord{}, err
	}
	s.logger.Info("slump saved", zap.String("id", saved.ID), zap.String("labor", saved.Labor), zap.String("slump", saved.SlumpText))
	return saved, nil
}

// SubmitResistA estimates strength from one Method A batch and stores it.
func (s *Service) SubmitResistA(ctx context.Context, in models.ResistAInput) (models.ResistRecord, error) {
	rec, err := s.buildResistARecord(in)
	if err != nil {
		return models.ResistRecord{}, err
	}
	saved, err := s.repo.InsertResist(ctx, []models.ResistRecord{rec})
	if err != nil {
		return models.ResistRecord{}, err
	}
	s.logger.Info("method A saved", zap.String("id", saved[0].ID), zap.Float64("mpa", saved[0].StrengthMPa))
	return saved[0], nil
}

// SubmitResistB stores one record per checkpoint, all in one transaction,
// after every checkpoint has been validated.
func (s *Service) SubmitResistB(ctx context.Context, in models.ResistBInput) ([]models.ResistRecord, error) {
	recs, err := s.buildResistBRecords(in)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.InsertResist(ctx, recs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("method B saved", zap.Int("checkpoints", len(saved)), zap.String("labor", in.Labor))
	return saved, nil
}

// SubmitPernos stores a bolt count. At least one bolt must be reported.
func (s *Service) SubmitPernos(ctx context.Context, in models.PernosInput) (models.PernosRecord, error) {
	rec, err := s.buildPernosRecord(in)
	if err != nil {
		return models.PernosRecord{}, err
	}
	saved, err := s.repo.InsertPernos(ctx, rec)
	if err != nil {
		return models.PernosRecord{}, err
	}
	s.logger.Info("pernos saved", zap.String("id", saved.ID), zap.Int("helical", saved.Helical), zap.Int("friction", saved.Friction))
	return saved, nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, coll models.Collection, id string) error {
	if strings.TrimSpace(id) == "" {
		return models.Reject("id", "id is required")
	}
	if err := s.repo.Delete(ctx, coll, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", zap.String("collection", string(coll)), zap.String("id", id))
	return nil
}

// Clear empties one collection.
func (s *Service) Clear(ctx context.Context, coll models.Collection) error {
	if err := s.repo.Clear(ctx, coll); err != nil {
		return err
	}
	s.logger.Warn("collection cleared", zap.String("collection", string(coll)))
	return nil
}

// ClearAll empties every collection.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repo.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("all collections cleared")
	return nil
}

// ListSlump returns slump records inside the range, oldest first.
func (s *Service) ListSlump(ctx context.Context, r query.Range) ([]models.SlumpRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListSlump(ctx)
	if err != nil {
		return nil, err
	}
	return query.Filter(recs, r), nil
}

// ListResist returns strength records inside the range, oldest first.
func (s *Service) ListResist(ctx context.Context, r query.Range) ([]models.ResistRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListResist(ctx)
	if err != nil {
		return nil, err
	}
	return query.Filter(recs, r), nil
}

// ListPernos returns bolt records inside the range, oldest first.
func (s *Service) ListPernos(ctx context.Context, r query.Range) ([]models.PernosRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListPernos(ctx)
	if err != nil {
		return nil, err
	}
	return query.Filter(recs, r), nil
}

func (s *Service) buildSlumpRecord(in models.SlumpInput) (models.SlumpRecord, error) {
	if err := models.ValidateDate("fecha", in.Date); err != nil {
		return models.SlumpRecord{}, err
	}
	clock, err := models.NormalizeClock("horaSlump", in.Time)
	if err != nil {
		return models.SlumpRecord{}, err
	}
	departure, err := models.NormalizeClock("hs", in.Departure)
	if err != nil {
		return models.SlumpRecord{}, err
	}
	arrival, err := models.NormalizeClock("hll", in.Arrival)
	if err != nil {
		return models.SlumpRecord{}, err
	}

	slump, err := models.ParseSlump(in.Slump)
	if err != nil {
		return models.SlumpRecord{}, err
	}
	if err := finite("temp", in.TempC); err != nil {
		return models.SlumpRecord{}, err
	}
	if err := finite("presionAire", in.AirPressure); err != nil {
		return models.SlumpRecord{}, err
	}
	if in.AirPressure != nil && *in.AirPressure < 0 {
		return models.SlumpRecord{}, models.Reject("presionAire", "air pressure cannot be negative")
	}

	rec := models.SlumpRecord{
		Date:        in.Date,
		Time:        clock,
		Labor:       strings.TrimSpace(in.Labor),
		Level:       strings.TrimSpace(in.Level),
		Operator:    strings.TrimSpace(in.Operator),
		SlumpRaw:    in.Slump,
		SlumpIn:     slump.Value,
		SlumpText:   slump.Text,
		TempC:       in.TempC,
		AirPressure: in.AirPressure,
		Mixer:       strings.TrimSpace(in.Mixer),
		Departure:   departure,
		Arrival:     arrival,
		WithinRange: s.limits.Contains(slump.Value),
		Obs:         strings.TrimSpace(in.Obs),
	}
	if delay, ok := models.DelayMinutes(arrival, departure); ok {
		rec.DelayMin = &delay
	}
	return rec, nil
}

func (s *Service) buildResistARecord(in models.ResistAInput) (models.ResistRecord, error) {
	if err := models.ValidateDate("fecha", in.Date); err != nil {
		return models.ResistRecord{}, err
	}
	clock, err := models.NormalizeClock("hora", in.Time)
	if err != nil {
		return models.ResistRecord{}, err
	}
	if in.AgeMinutes < 0 {
		return models.ResistRecord{}, models.Reject("edadMin", "age cannot be negative")
	}
	res, err := s.table.EstimateA(in.Curve, in.Readings)
	if err != nil {
		return models.ResistRecord{}, err
	}
	return models.ResistRecord{
		Date:        in.Date,
		Time:        clock,
		Labor:       strings.TrimSpace(in.Labor),
		Level:       strings.TrimSpace(in.Level),
		Method:      models.MethodA,
		Curve:       res.Curve,
		AgeMinutes:  in.AgeMinutes,
		AgeLabel:    ageLabel(in.AgeLabel, in.AgeMinutes),
		StrengthMPa: res.Strength,
		Readings:    append([]float64(nil), in.Readings...),
		ReadingMean: res.Mean,
		Obs:         strings.TrimSpace(in.Obs),
	}, nil
}

func (s *Service) buildResistBRecords(in models.ResistBInput) ([]models.ResistRecord, error) {
	if err := models.ValidateDate("fecha", in.Date); err != nil {
		return nil, err
	}
	clocks := make([]string, len(in.Checkpoints))
	for i, cp := range in.Checkpoints {
		if cp.AgeMinutes < 0 {
			return nil, models.Reject(fmt.Sprintf("checkpoint %d", i+1), "age cannot be negative")
		}
		clock, err := models.NormalizeClock(fmt.Sprintf("checkpoint %d hora", i+1), cp.Time)
		if err != nil {
			return nil, err
		}
		clocks[i] = clock
	}

	results, err := s.table.EstimateB(in.Curve, in.Checkpoints)
	if err != nil {
		return nil, err
	}

	recs := make([]models.ResistRecord, len(results))
	for i, res := range results {
		cp := in.Checkpoints[i]
		recs[i] = models.ResistRecord{
			Date:        in.Date,
			Time:        clocks[i],
			Labor:       strings.TrimSpace(in.Labor),
			Level:       strings.TrimSpace(in.Level),
			Method:      models.MethodB,
			Curve:       res.Curve,
			AgeMinutes:  cp.AgeMinutes,
			AgeLabel:    ageLabel(cp.AgeLabel, cp.AgeMinutes),
			StrengthMPa: res.Strength,
			Nails:       append([]models.NailReading(nil), cp.Nails...),
			RatioMean:   res.RatioMean,
			Obs:         strings.TrimSpace(in.Obs),
		}
	}
	return recs, nil
}

func (s *Service) buildPernosRecord(in models.PernosInput) (models.PernosRecord, error) {
	if err := models.ValidateDate("fecha", in.Date); err != nil {
		return models.PernosRecord{}, err
	}
	clock, err := models.NormalizeClock("hora", in.Time)
	if err != nil {
		return models.PernosRecord{}, err
	}
	if in.Helical < 0 {
		return models.PernosRecord{}, models.Reject("cantHel", "count cannot be negative")
	}
	if in.Friction < 0 {
		return models.PernosRecord{}, models.Reject("cantSw", "count cannot be negative")
	}
	if in.Helical+in.Friction <= 0 {
		return models.PernosRecord{}, models.Reject("cantHel", "at least one bolt must be reported")
	}
	return models.PernosRecord{
		Date:     in.Date,
		Time:     clock,
		Labor:    strings.TrimSpace(in.Labor),
		Level:    strings.TrimSpace(in.Level),
		Helical:  in.Helical,
		Friction: in.Friction,
		Obs:      strings.TrimSpace(in.Obs),
	}, nil
}

func ageLabel(label string, minutes int) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	return models.AgeLabel(minutes)
}

func finite(field string, v *float64) error {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return models.Reject(field, "value must be a finite number")
	}
	return nil
}
