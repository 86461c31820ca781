package reporting

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

//go:embed templates/print.html.tmpl
var printSource string

var printTemplate = template.Must(template.New("print").Parse(printSource))

type printChart struct {
	Title string
	Src   template.URL
}

type printView struct {
	Caption     string
	GeneratedAt string
	Summary     []string
	Charts      []printChart
}

// Printable writes a standalone HTML document with the summary and every
// chart embedded as a PNG data URL.
func Printable(w io.Writer, r *models.Report) error {
	view := printView{
		Caption:     r.Caption,
		GeneratedAt: r.GeneratedAt.Format(time.DateTime),
		Summary:     r.Summary,
	}
	for _, c := range r.Charts {
		view.Charts = append(view.Charts, printChart{
			Title: c.Title,
			Src:   template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)),
		})
	}
	if err := printTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render printable report: %w", err)
	}
	return nil
}
