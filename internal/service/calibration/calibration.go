package calibration

import (
	"fmt"
	"math"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// Key selects one calibration function.
type Key struct {
	Method models.ResistMethod
	Curve  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Method, k.Curve)
}

// Coefficients define strength = A * predictor + B.
type Coefficients struct {
	A float64
	B float64
}

// Estimate applies the linear mapping. Strength is never negative.
func (c Coefficients) Estimate(predictor float64) float64 {
	return math.Max(0, c.A*predictor+c.B)
}

// Table maps (method, curve) onto coefficients together with the fixed batch
// sizes each method expects. It is immutable once built.
type Table struct {
	entries   map[Key]Coefficients
	readingsA int
	readingsB int
}

// NewTable builds a Table from configuration.
func NewTable(cfg config.CalibrationConfig) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Table{
		entries:   make(map[Key]Coefficients, len(cfg.Curves)),
		readingsA: cfg.ReadingsA,
		readingsB: cfg.ReadingsB,
	}
	for _, c := range cfg.Curves {
		t.entries[Key{Method: models.ResistMethod(c.Method), Curve: c.Curve}] = Coefficients{A: c.A, B: c.B}
	}
	return t, nil
}

// ReadingsA is the Method A batch size.
func (t *Table) ReadingsA() int { return t.readingsA }

// ReadingsB is the Method B per-checkpoint batch size.
func (t *Table) ReadingsB() int { return t.readingsB }

// Lookup returns the coefficients for a key. An empty curve selects "default".
func (t *Table) Lookup(method models.ResistMethod, curve string) (Coefficients, string, error) {
	if curve == "" {
		curve = "default"
	}
	c, ok := t.entries[Key{Method: method, Curve: curve}]
	if !ok {
		return Coefficients{}, "", models.Reject("curva", "no calibration for method %s curve %q", method, curve)
	}
	return c, curve, nil
}

// AResult is the reduction of one Method A batch.
type AResult struct {
	Curve    string
	Mean     float64
	Strength float64
}

// EstimateA validates a penetration-resistance batch and maps its mean onto
// a strength estimate.
func (t *Table) EstimateA(curve string, readings []float64) (AResult, error) {
	coeff, curve, err := t.Lookup(models.MethodA, curve)
	if err != nil {
		return AResult{}, err
	}
	if len(readings) != t.readingsA {
		return AResult{}, models.Reject("lecturas", "method A requires exactly %d readings, got %d", t.readingsA, len(readings))
	}

	var sum float64
	for i, r := range readings {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return AResult{}, models.Reject("lecturas", "reading %d (%v) must be a non-negative number", i+1, r)
		}
		sum += r
	}
	mean := sum / float64(len(readings))

	return AResult{Curve: curve, Mean: mean, Strength: coeff.Estimate(mean)}, nil
}

// BResult is the reduction of one Method B checkpoint.
type BResult struct {
	Curve     string
	RatioMean float64
	Strength  float64
}

// EstimateB validates every checkpoint before estimating any of them; one bad
// checkpoint rejects the whole batch.
func (t *Table) EstimateB(curve string, checkpoints []models.Checkpoint) ([]BResult, error) {
	coeff, curve, err := t.Lookup(models.MethodB, curve)
	if err != nil {
		return nil, err
	}
	if len(checkpoints) == 0 {
		return nil, models.Reject("checkpoints", "at least one checkpoint is required")
	}

	for i, cp := range checkpoints {
		if len(cp.Nails) != t.readingsB {
			return nil, models.Reject(checkpointField(i, cp), "expected %d readings, got %d", t.readingsB, len(cp.Nails))
		}
		for j, n := range cp.Nails {
			if n.Embedded() <= 0 {
				return nil, models.Reject(checkpointField(i, cp),
					"reading %d: exposed length %s must be shorter than nail length %s (embedment %s)",
					j+1, models.FormatNumber(n.ExposedLength), models.FormatNumber(n.NailLength), models.FormatNumber(n.Embedded()))
			}
			if n.Force < 0 || math.IsNaN(n.Force) || math.IsInf(n.Force, 0) {
				return nil, models.Reject(checkpointField(i, cp), "reading %d: pull-out force must be a non-negative number", j+1)
			}
		}
	}

	results := make([]BResult, 0, len(checkpoints))
	for _, cp := range checkpoints {
		var sum float64
		for _, n := range cp.Nails {
			sum += n.Force / n.Embedded()
		}
		ratio := sum / float64(len(cp.Nails))
		results = append(results, BResult{Curve: curve, RatioMean: ratio, Strength: coeff.Estimate(ratio)})
	}
	return results, nil
}

func checkpointField(i int, cp models.Checkpoint) string {
	label := cp.AgeLabel
	if label == "" {
		label = models.AgeLabel(cp.AgeMinutes)
	}
	return fmt.Sprintf("checkpoint %d (%s)", i+1, label)
}
