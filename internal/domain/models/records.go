package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout every record date is stored in.
// Range filtering compares dates as strings, which is only safe because of it.
const DateLayout = "2006-01-02"

// Collection names one of the three independent record stores.
type Collection string

const (
	CollectionSlump  Collection = "slump"
	CollectionResist Collection = "resist"
	CollectionPernos Collection = "pernos"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{CollectionSlump, CollectionResist, CollectionPernos}

// ParseCollection maps a path or flag value onto a known collection.
func ParseCollection(value string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == value {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", value)
}

// Record is implemented by every stored record kind.
type Record interface {
	RecordID() string
	RecordDate() string
	RecordTime() string
	RecordLabor() string
}

// Meta carries the identity assigned by the record store.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// SlumpRecord captures one slump test on a concrete delivery.
type SlumpRecord struct {
	Meta
	Date        string   `json:"fecha"`
	Time        string   `json:"hora,omitempty"`
	Labor       string   `json:"labor"`
	Level       string   `json:"nivel,omitempty"`
	Operator    string   `json:"operador,omitempty"`
	SlumpRaw    string   `json:"slumpRaw"`
	SlumpIn     float64  `json:"slumpIn"`
	SlumpText   string   `json:"slumpText"`
	TempC       *float64 `json:"temp,omitempty"`
	AirPressure *float64 `json:"presionAire,omitempty"`
	Mixer       string   `json:"mixerHS,omitempty"`
	Departure   string   `json:"hs,omitempty"`
	Arrival     string   `json:"hll,omitempty"`
	DelayMin    *int     `json:"demoraMin,omitempty"`
	WithinRange bool     `json:"enRango"`
	Obs         string   `json:"obs,omitempty"`
}

func (r SlumpRecord) RecordID() string    { return r.ID }
func (r SlumpRecord) RecordDate() string  { return r.Date }
func (r SlumpRecord) RecordTime() string  { return r.Time }
func (r SlumpRecord) RecordLabor() string { return r.Labor }

// ResistMethod tags the early-age strength procedure.
type ResistMethod string

const (
	MethodA ResistMethod = "A"
	MethodB ResistMethod = "B"
)

// NailReading is one Method B nail: its length, the part left exposed after
// firing and the force needed to pull it out.
type NailReading struct {
	NailLength    float64 `json:"largo"`
	ExposedLength float64 `json:"expuesto"`
	Force         float64 `json:"fuerza"`
}

// Embedded returns the driven length of the nail.
func (n NailReading) Embedded() float64 {
	return n.NailLength - n.ExposedLength
}

// ResistRecord captures one strength estimate together with the raw readings
// it was derived from.
type ResistRecord struct {
	Meta
	Date        string        `json:"fecha"`
	Time        string        `json:"hora,omitempty"`
	Labor       string        `json:"labor"`
	Level       string        `json:"nivel,omitempty"`
	Method      ResistMethod  `json:"metodo"`
	Curve       string        `json:"curva"`
	AgeMinutes  int           `json:"edadMin"`
	AgeLabel    string        `json:"edad"`
	StrengthMPa float64       `json:"resistencia"`
	Readings    []float64     `json:"lecturas,omitempty"`
	ReadingMean float64       `json:"lecturaProm,omitempty"`
	Nails       []NailReading `json:"clavos,omitempty"`
	RatioMean   float64       `json:"ratioProm,omitempty"`
	Obs         string        `json:"obs,omitempty"`
}

func (r ResistRecord) RecordID() string    { return r.ID }
func (r ResistRecord) RecordDate() string  { return r.Date }
func (r ResistRecord) RecordTime() string  { return r.Time }
func (r ResistRecord) RecordLabor() string { return r.Labor }

// PernosRecord captures rock bolts installed at a heading.
type PernosRecord struct {
	Meta
	Date     string `json:"fecha"`
	Time     string `json:"hora,omitempty"`
	Labor    string `json:"labor"`
	Level    string `json:"nivel,omitempty"`
	Helical  int    `json:"helicoidal"`
	Friction int    `json:"swellex"`
	Obs      string `json:"obs,omitempty"`
}

func (r PernosRecord) RecordID() string    { return r.ID }
func (r PernosRecord) RecordDate() string  { return r.Date }
func (r PernosRecord) RecordTime() string  { return r.Time }
func (r PernosRecord) RecordLabor() string { return r.Labor }

// Snapshot is the full content of the three collections read together.
type Snapshot struct {
	Slump  []SlumpRecord  `json:"slump"`
	Resist []ResistRecord `json:"resist"`
	Pernos []PernosRecord `json:"pernos"`
}

// Len returns the number of records across all collections.
func (s Snapshot) Len() int {
	return len(s.Slump) + len(s.Resist) + len(s.Pernos)
}

// ExportDocument is the portable backup format.
type ExportDocument struct {
	ExportedAt time.Time `json:"exportedAt"`
	Snapshot
}
