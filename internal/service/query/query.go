package query

import (
	"sort"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// Range is an inclusive date range. An empty bound leaves that side open.
type Range struct {
	From string `json:"from,omitempty" form:"from"`
	To   string `json:"to,omitempty" form:"to"`
}

// All is the unbounded range.
var All = Range{}

// Day returns the range covering a single calendar day.
func Day(date string) Range {
	return Range{From: date, To: date}
}

// Validate checks both bounds are YYYY-MM-DD dates when present.
func (r Range) Validate() error {
	if r.From != "" {
		if err := models.ValidateDate("from", r.From); err != nil {
			return err
		}
	}
	if r.To != "" {
		if err := models.ValidateDate("to", r.To); err != nil {
			return err
		}
	}
	if r.From != "" && r.To != "" && r.From > r.To {
		return models.Reject("from", "%s is after %s", r.From, r.To)
	}
	return nil
}

// Contains reports whether date falls inside the range. Dates compare as
// strings because they are always YYYY-MM-DD.
func (r Range) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// Caption describes the range for report headers.
func (r Range) Caption() string {
	switch {
	case r.From == "" && r.To == "":
		return "All history"
	case r.To == "":
		return "From " + r.From
	case r.From == "":
		return "Until " + r.To
	case r.From == r.To:
		return r.From
	default:
		return r.From + " to " + r.To
	}
}

// Filter returns the records inside the range ordered by (date, time).
// Records without a time sort before timed ones on the same day; ties keep
// their input order. The input slice is not modified.
func Filter[T models.Record](records []T, r Range) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.RecordDate()) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].RecordDate(), out[j].RecordDate()
		if di != dj {
			return di < dj
		}
		return out[i].RecordTime() < out[j].RecordTime()
	})
	return out
}
