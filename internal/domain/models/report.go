package models

import "time"

// Stat summarises one numeric field. N == 0 means no data, which is
// different from a true zero mean.
type Stat struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Empty reports whether the stat was computed over no values.
func (s Stat) Empty() bool { return s.N == 0 }

// BoltTotals sums installed bolts over a set of pernos records.
type BoltTotals struct {
	Records  int `json:"records"`
	Helical  int `json:"helical"`
	Friction int `json:"friction"`
}

// Total returns helical plus friction bolts.
func (b BoltTotals) Total() int { return b.Helical + b.Friction }

// Empty reports whether no pernos records contributed.
func (b BoltTotals) Empty() bool { return b.Records == 0 }

// LocationValue is one per-location metric of a report.
type LocationValue struct {
	Location string  `json:"labor"`
	Value    float64 `json:"value"`
	Count    int     `json:"count"`
}

// ChartImage is a rendered report chart.
type ChartImage struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	PNG   []byte `json:"-"`
}

// Report is the assembled output for one date range. Charts and numbers are
// computed from the same snapshot.
type Report struct {
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Caption     string    `json:"caption"`
	GeneratedAt time.Time `json:"generatedAt"`

	SlumpCount  int `json:"slumpCount"`
	ResistCount int `json:"resistCount"`
	PernosCount int `json:"pernosCount"`
	OutOfRange  int `json:"slumpOutOfRange"`

	SlumpByLocation    []LocationValue `json:"slumpByLabor"`
	AirByLocation      []LocationValue `json:"airByLabor"`
	BoltsByLocation    []LocationValue `json:"boltsByLabor"`
	StrengthByLocation []LocationValue `json:"strengthByLabor"`

	Slump       Stat       `json:"slump"`
	Air         Stat       `json:"air"`
	Temperature Stat       `json:"temperature"`
	Strength    Stat       `json:"strength"`
	Bolts       BoltTotals `json:"bolts"`

	Charts  []ChartImage `json:"charts"`
	Summary []string     `json:"summary"`
}

// Chart returns the named chart, if rendered.
func (r *Report) Chart(name string) (ChartImage, bool) {
	for _, c := range r.Charts {
		if c.Name == name {
			return c, true
		}
	}
	return ChartImage{}, false
}
