package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

// DirName is the archive directory name for a report: the day for a
// single-day report, otherwise the bounds joined by "_".
func DirName(r *models.Report) string {
	switch {
	case r.From != "" && r.From == r.To:
		return r.From
	case r.From == "" && r.To == "":
		return "all"
	default:
		from, to := r.From, r.To
		if from == "" {
			from = "start"
		}
		if to == "" {
			to = "now"
		}
		return from + "_" + to
	}
}

// Save writes the report into root/DirName(r): one PNG per chart, the text
// summary, the JSON numbers and the printable document. Files are written to
// a temporary directory first and swapped in by rename, so a failed run
// leaves the previous report in place.
func Save(r *models.Report, root string) (string, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return "", fmt.Errorf("create report root: %w", err)
	}
	tmp, err := os.MkdirTemp(root, ".tmp-")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := writeFiles(r, tmp); err != nil {
		return "", err
	}

	target := filepath.Join(root, DirName(r))
	old := target + ".old"
	if _, err := os.Stat(target); err == nil {
		_ = os.RemoveAll(old)
		if err := os.Rename(target, old); err != nil {
			return "", fmt.Errorf("move previous report aside: %w", err)
		}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Rename(old, target)
		return "", fmt.Errorf("publish report: %w", err)
	}
	_ = os.RemoveAll(old)
	return target, nil
}

func writeFiles(r *models.Report, dir string) error {
	for _, c := range r.Charts {
		if err := os.WriteFile(filepath.Join(dir, c.Name+".png"), c.PNG, 0o640); err != nil {
			return fmt.Errorf("write %s chart: %w", c.Name, err)
		}
	}

	summary := strings.Join(r.Summary, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "summary.txt"), []byte(summary), 0o640); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), data, 0o640); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "print.html"))
	if err != nil {
		return fmt.Errorf("create printable: %w", err)
	}
	if err := Printable(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close printable: %w", err)
	}
	return nil
}
