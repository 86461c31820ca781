package models

import "fmt"

// SlumpInput is the raw slump form submission.
type SlumpInput struct {
	Date        string   `json:"fecha" binding:"required"`
	Time        string   `json:"horaSlump"`
	Labor       string   `json:"labor"`
	Level       string   `json:"nivel"`
	Operator    string   `json:"operador"`
	Slump       string   `json:"slumpIn" binding:"required"`
	TempC       *float64 `json:"temp"`
	AirPressure *float64 `json:"presionAire"`
	Mixer       string   `json:"mixerHS"`
	Departure   string   `json:"hs"`
	Arrival     string   `json:"hll"`
	Obs         string   `json:"obs"`
}

// ResistAInput is a Method A submission: one batch of penetration readings.
type ResistAInput struct {
	Date       string    `json:"fecha" binding:"required"`
	Time       string    `json:"hora"`
	Labor      string    `json:"labor"`
	Level      string    `json:"nivel"`
	Curve      string    `json:"curva"`
	AgeMinutes int       `json:"edadMin"`
	AgeLabel   string    `json:"edad"`
	Readings   []float64 `json:"lecturas"`
	Obs        string    `json:"obs"`
}

// Checkpoint is one Method B age checkpoint with its nail readings.
type Checkpoint struct {
	AgeMinutes int           `json:"edadMin"`
	AgeLabel   string        `json:"edad"`
	Time       string        `json:"hora"`
	Nails      []NailReading `json:"clavos"`
}

// ResistBInput is a Method B submission covering several checkpoints.
type ResistBInput struct {
	Date        string       `json:"fecha" binding:"required"`
	Labor       string       `json:"labor"`
	Level       string       `json:"nivel"`
	Curve       string       `json:"curva"`
	Checkpoints []Checkpoint `json:"checkpoints"`
	Obs         string       `json:"obs"`
}

// PernosInput is the bolt count submission.
type PernosInput struct {
	Date     string `json:"fecha" binding:"required"`
	Time     string `json:"hora"`
	Labor    string `json:"labor"`
	Level    string `json:"nivel"`
	Helical  int    `json:"cantHel"`
	Friction int    `json:"cantSw"`
	Obs      string `json:"obs"`
}

// AgeLabel renders an elapsed age such as "45 min", "2 h" or "1 h 30 min".
func AgeLabel(minutes int) string {
	switch {
	case minutes <= 0:
		return "0 min"
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%d h", minutes/60)
	default:
		return fmt.Sprintf("%d h %d min", minutes/60, minutes%60)
	}
}
