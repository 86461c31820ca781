package exchange

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// Workbook renders the full record set as an XLSX file, one sheet per
// collection.
func (s *Service) Workbook(ctx context.Context) ([]byte, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFEDD5"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sheets := []sheet{slumpSheet(snap.Slump), resistSheet(snap.Resist), pernosSheet(snap.Pernos)}
	for _, sh := range sheets {
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheets[0].name)
	if err != nil {
		return nil, fmt.Errorf("find sheet %s: %w", sheets[0].name, err)
	}
	f.SetActiveSheet(idx)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("workbook exported", zap.Int("records", snap.Len()))
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	if _, err := f.NewSheet(sh.name); err != nil {
		return fmt.Errorf("create sheet %s: %w", sh.name, err)
	}
	for col, header := range sh.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sh.name, cell, header); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sh.name, cell, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if col < len(sh.widths) {
			if err := f.SetColWidth(sh.name, name, name, sh.widths[col]); err != nil {
				return fmt.Errorf("set width %s!%s: %w", sh.name, name, err)
			}
		}
	}
	last, err := excelize.CoordinatesToCellName(len(sh.headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sh.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header %s: %w", sh.name, err)
	}

	for r, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sh.name, r+2, err)
		}
	}

	return f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func slumpSheet(recs []models.SlumpRecord) sheet {
	sh := sheet{
		name: "Slump",
		headers: []string{"Date", "Time", "Location", "Level", "Operator", "Slump (in)", "Slump",
			"Temp (C)", "Air pressure", "Mixer", "Departure", "Arrival", "Delay (min)", "In range", "Obs", "ID"},
		widths: []float64{12, 8, 22, 10, 16, 10, 10, 9, 12, 12, 10, 10, 11, 9, 30, 38},
	}
	for _, r := range recs {
		sh.rows = append(sh.rows, []any{
			r.Date, r.Time, r.Labor, r.Level, r.Operator, r.SlumpIn, r.SlumpText,
			optFloat(r.TempC), optFloat(r.AirPressure), r.Mixer, r.Departure, r.Arrival,
			optInt(r.DelayMin), yesNo(r.WithinRange), r.Obs, r.ID,
		})
	}
	return sh
}

func resistSheet(recs []models.ResistRecord) sheet {
	sh := sheet{
		name: "Strength",
		headers: []string{"Date", "Time", "Location", "Level", "Method", "Curve", "Age (min)", "Age",
			"Strength (MPa)", "Readings", "Reading mean", "Nails", "Ratio mean", "Obs", "ID"},
		widths: []float64{12, 8, 22, 10, 8, 10, 10, 12, 14, 30, 12, 40, 11, 30, 38},
	}
	for _, r := range recs {
		sh.rows = append(sh.rows, []any{
			r.Date, r.Time, r.Labor, r.Level, string(r.Method), r.Curve, r.AgeMinutes, r.AgeLabel,
			r.StrengthMPa, joinReadings(r.Readings), r.ReadingMean, joinNails(r.Nails), r.RatioMean, r.Obs, r.ID,
		})
	}
	return sh
}

func pernosSheet(recs []models.PernosRecord) sheet {
	sh := sheet{
		name:    "Bolts",
		headers: []string{"Date", "Time", "Location", "Level", "Helical", "Friction", "Total", "Obs", "ID"},
		widths:  []float64{12, 8, 22, 10, 9, 9, 9, 30, 38},
	}
	for _, r := range recs {
		sh.rows = append(sh.rows, []any{
			r.Date, r.Time, r.Labor, r.Level, r.Helical, r.Friction, r.Helical + r.Friction, r.Obs, r.ID,
		})
	}
	return sh
}

func optFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func joinReadings(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = models.FormatNumber(v)
	}
	return strings.Join(parts, "; ")
}

func joinNails(nails []models.NailReading) string {
	parts := make([]string, len(nails))
	for i, n := range nails {
		parts[i] = fmt.Sprintf("%s/%s/%s", models.FormatNumber(n.NailLength), models.FormatNumber(n.ExposedLength), models.FormatNumber(n.Force))
	}
	return strings.Join(parts, "; ")
}
