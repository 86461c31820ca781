package aggregate

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// NoLocation labels records whose work location is empty.
const NoLocation = "NO LOCATION"

// Metric extracts one numeric field. ok is false when the record has no value.
type Metric[T any] func(rec T) (value float64, ok bool)

// Location canonicalizes a work location. Only trimming is applied, so
// near-duplicate spellings stay separate groups.
func Location(labor string) string {
	if l := strings.TrimSpace(labor); l != "" {
		return l
	}
	return NoLocation
}

// Groups maps a location onto its records.
type Groups[T models.Record] map[string][]T

// GroupByLocation partitions records by canonical location.
func GroupByLocation[T models.Record](records []T) Groups[T] {
	g := make(Groups[T])
	for _, rec := range records {
		key := Location(rec.RecordLabor())
		g[key] = append(g[key], rec)
	}
	return g
}

// Keys returns the group names in collated order.
func (g Groups[T]) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	collate.New(language.Spanish).SortStrings(keys)
	return keys
}

// Mean is the arithmetic mean of the metric over records that carry it, or
// 0 when none do. Callers tell "no data" apart by group size.
func Mean[T any](records []T, metric Metric[T]) float64 {
	return Summarize(records, metric).Mean
}

// Summarize computes count, mean, min and max of a metric. The result does
// not depend on record order.
func Summarize[T any](records []T, metric Metric[T]) models.Stat {
	values := collect(records, metric)
	if len(values) == 0 {
		return models.Stat{}
	}
	return models.Stat{
		N:    len(values),
		Mean: sum(values) / float64(len(values)),
		Min:  values[0],
		Max:  values[len(values)-1],
	}
}

// collect returns the finite metric values in ascending order.
func collect[T any](records []T, metric Metric[T]) []float64 {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		v, ok := metric(rec)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	sort.Float64s(values)
	return values
}

// sum adds sorted values; a fixed order keeps float rounding stable.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Series is one metric per location, aligned by index.
type Series struct {
	Labels []string
	Values []float64
	Counts []int
}

// Len returns the number of locations.
func (s Series) Len() int { return len(s.Labels) }

// LocationValues converts the series for a report.
func (s Series) LocationValues() []models.LocationValue {
	out := make([]models.LocationValue, len(s.Labels))
	for i := range s.Labels {
		out[i] = models.LocationValue{Location: s.Labels[i], Value: s.Values[i], Count: s.Counts[i]}
	}
	return out
}

// MeansByLocation averages the metric inside each group.
func MeansByLocation[T models.Record](g Groups[T], metric Metric[T]) Series {
	keys := g.Keys()
	s := Series{Labels: keys, Values: make([]float64, len(keys)), Counts: make([]int, len(keys))}
	for i, k := range keys {
		s.Values[i] = Mean(g[k], metric)
		s.Counts[i] = len(g[k])
	}
	return s
}

// SumsByLocation totals the metric inside each group.
func SumsByLocation[T models.Record](g Groups[T], metric Metric[T]) Series {
	keys := g.Keys()
	s := Series{Labels: keys, Values: make([]float64, len(keys)), Counts: make([]int, len(keys))}
	for i, k := range keys {
		s.Values[i] = sum(collect(g[k], metric))
		s.Counts[i] = len(g[k])
	}
	return s
}

// BoltTotals sums both bolt types.
func BoltTotals(records []models.PernosRecord) models.BoltTotals {
	var b models.BoltTotals
	for _, r := range records {
		b.Records++
		b.Helical += r.Helical
		b.Friction += r.Friction
	}
	return b
}

// Common metrics.

func SlumpValue(r models.SlumpRecord) (float64, bool) { return r.SlumpIn, true }

func Temperature(r models.SlumpRecord) (float64, bool) { return deref(r.TempC) }

func AirPressure(r models.SlumpRecord) (float64, bool) { return deref(r.AirPressure) }

func Strength(r models.ResistRecord) (float64, bool) { return r.StrengthMPa, true }

func Bolts(r models.PernosRecord) (float64, bool) { return float64(r.Helical + r.Friction), true }

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
