package reporting

import (
	"fmt"
	"image/color"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// NoData is printed for a KPI computed over zero values.
const NoData = "no data"

var (
	methodAColor = color.RGBA{0x7c, 0x3a, 0xed, 0xff}
	methodBColor = color.RGBA{0xef, 0x44, 0x44, 0xff}
)

// Summarize composes the text summary of a report. KPIs with no
// contributing values read NoData instead of 0.
func Summarize(r *models.Report) []string {
	lines := []string{
		fmt.Sprintf("Range: %s", r.Caption),
		fmt.Sprintf("Records: %d slump, %d strength, %d bolting", r.SlumpCount, r.ResistCount, r.PernosCount),
	}

	if r.Slump.Empty() {
		lines = append(lines, "Slump: "+NoData)
	} else {
		lines = append(lines, fmt.Sprintf("Slump: mean %s\" over %d tests, %d out of range",
			models.FormatNumber(r.Slump.Mean), r.Slump.N, r.OutOfRange))
	}

	lines = append(lines, "Air pressure: "+statText(r.Air, ""))
	lines = append(lines, "Temperature: "+statText(r.Temperature, " °C"))
	lines = append(lines, "Strength: "+statText(r.Strength, " MPa"))

	if r.Bolts.Empty() {
		lines = append(lines, "Bolts: "+NoData)
	} else {
		lines = append(lines, fmt.Sprintf("Bolts: %d installed (%d helical, %d friction)",
			r.Bolts.Total(), r.Bolts.Helical, r.Bolts.Friction))
	}

	lines = append(lines, fmt.Sprintf("Locations: %d", countLocations(r)))
	return lines
}

func statText(s models.Stat, unit string) string {
	if s.Empty() {
		return NoData
	}
	return fmt.Sprintf("mean %s%s (min %s, max %s, n=%d)",
		models.FormatNumber(s.Mean), unit, models.FormatNumber(s.Min), models.FormatNumber(s.Max), s.N)
}

func countLocations(r *models.Report) int {
	seen := map[string]struct{}{}
	for _, group := range [][]models.LocationValue{r.SlumpByLocation, r.StrengthByLocation, r.BoltsByLocation} {
		for _, lv := range group {
			seen[lv.Location] = struct{}{}
		}
	}
	return len(seen)
}
