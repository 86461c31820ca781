package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// Store is the part of the record store used for backups.
type Store interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
	Import(ctx context.Context, snap models.Snapshot) (models.Snapshot, error)
}

// ImportResult counts the records merged by an import.
type ImportResult struct {
	Slump  int `json:"slump"`
	Resist int `json:"resist"`
	Pernos int `json:"pernos"`
}

// Total returns the number of imported records.
func (r ImportResult) Total() int { return r.Slump + r.Resist + r.Pernos }

// Service exports and imports the full record set.
type Service struct {
	repo   Store
	limits config.LimitsConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the export/import service.
func NewService(repository Store, limits config.LimitsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, limits: limits, logger: logger, now: time.Now}
}

// Export returns every record stamped with the export time.
func (s *Service) Export(ctx context.Context) (models.ExportDocument, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return models.ExportDocument{}, fmt.Errorf("load snapshot: %w", err)
	}
	return models.ExportDocument{ExportedAt: s.now().UTC(), Snapshot: nonNil(snap)}, nil
}

// WriteJSON streams the export document as indented JSON.
func (s *Service) WriteJSON(ctx context.Context, w io.Writer) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	s.logger.Info("export written", zap.Int("records", doc.Len()))
	return nil
}

// Import decodes an export document and merges it into the store. Every
// record gets a fresh id; existing data is left untouched. Derived fields
// are recomputed from the raw entries, and a document with any malformed
// record is rejected as a whole.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var doc models.ExportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, models.Reject("file", "not a valid export document: %v", err)
	}
	snap, err := s.normalize(doc.Snapshot)
	if err != nil {
		return ImportResult{}, err
	}

	merged, err := s.repo.Import(ctx, snap)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Slump: len(merged.Slump), Resist: len(merged.Resist), Pernos: len(merged.Pernos)}
	s.logger.Info("import merged",
		zap.Int("slump", res.Slump),
		zap.Int("resist", res.Resist),
		zap.Int("pernos", res.Pernos),
		zap.Time("exportedAt", doc.ExportedAt),
	)
	return res, nil
}

// normalize re-derives every computed field so imported records obey the
// same rules as records entered through the forms.
func (s *Service) normalize(snap models.Snapshot) (models.Snapshot, error) {
	out := models.Snapshot{
		Slump:  make([]models.SlumpRecord, len(snap.Slump)),
		Resist: make([]models.ResistRecord, len(snap.Resist)),
		Pernos: make([]models.PernosRecord, len(snap.Pernos)),
	}
	for i, r := range snap.Slump {
		rec, err := s.normalizeSlump(fmt.Sprintf("slump[%d]", i), r)
		if err != nil {
			return models.Snapshot{}, err
		}
		out.Slump[i] = rec
	}
	for i, r := range snap.Resist {
		prefix := fmt.Sprintf("resist[%d]", i)
		if err := models.ValidateDate(prefix+".fecha", r.Date); err != nil {
			return models.Snapshot{}, err
		}
		if r.Method != models.MethodA && r.Method != models.MethodB {
			return models.Snapshot{}, models.Reject(prefix+".metodo", "unknown method %q", r.Method)
		}
		clock, err := models.NormalizeClock(prefix+".hora", r.Time)
		if err != nil {
			return models.Snapshot{}, err
		}
		r.Time = clock
		out.Resist[i] = r
	}
	for i, r := range snap.Pernos {
		prefix := fmt.Sprintf("pernos[%d]", i)
		if err := models.ValidateDate(prefix+".fecha", r.Date); err != nil {
			return models.Snapshot{}, err
		}
		clock, err := models.NormalizeClock(prefix+".hora", r.Time)
		if err != nil {
			return models.Snapshot{}, err
		}
		r.Time = clock
		out.Pernos[i] = r
	}
	return out, nil
}

func (s *Service) normalizeSlump(prefix string, r models.SlumpRecord) (models.SlumpRecord, error) {
	if err := models.ValidateDate(prefix+".fecha", r.Date); err != nil {
		return models.SlumpRecord{}, err
	}
	var err error
	if r.Time, err = models.NormalizeClock(prefix+".hora", r.Time); err != nil {
		return models.SlumpRecord{}, err
	}
	if r.Departure, err = models.NormalizeClock(prefix+".hs", r.Departure); err != nil {
		return models.SlumpRecord{}, err
	}
	if r.Arrival, err = models.NormalizeClock(prefix+".hll", r.Arrival); err != nil {
		return models.SlumpRecord{}, err
	}

	// Older exports carry only the display text.
	raw := r.SlumpRaw
	if raw == "" {
		raw = r.SlumpText
	}
	slump, err := models.ParseSlump(raw)
	if err != nil {
		var rej *models.RejectionError
		if errors.As(err, &rej) {
			return models.SlumpRecord{}, models.Reject(prefix+".slumpRaw", "%s", rej.Message)
		}
		return models.SlumpRecord{}, err
	}
	r.SlumpRaw = raw
	r.SlumpIn = slump.Value
	r.SlumpText = slump.Text
	r.WithinRange = s.limits.Contains(slump.Value)

	r.DelayMin = nil
	if delay, ok := models.DelayMinutes(r.Arrival, r.Departure); ok {
		r.DelayMin = &delay
	}
	return r, nil
}

// nonNil keeps empty collections as [] rather than null in exports.
func nonNil(s models.Snapshot) models.Snapshot {
	if s.Slump == nil {
		s.Slump = []models.SlumpRecord{}
	}
	if s.Resist == nil {
		s.Resist = []models.ResistRecord{}
	}
	if s.Pernos == nil {
		s.Pernos = []models.PernosRecord{}
	}
	return s
}
