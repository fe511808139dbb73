package report

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// StampLayout is the timestamp prefix written on every report line ("%b %e %T ")
const StampLayout = "Jan _2 15:04:05 "

const (
	titleText  = " Library Profile Result[nanoseconds]"
	headerText = "ProveName\t Total\t Max\t Min\t Count\t Ave"
)

// Formatter renders a report
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// TextFormatter writes the tab-separated layout existing log consumers parse
type TextFormatter struct {
	// Location used for the line timestamps; nil means time.Local
	Location *time.Location
}

// Format writes r to w
func (f TextFormatter) Format(w io.Writer, r *Report) error {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	stamp := r.FlushedAt.In(loc).Format(StampLayout)

	var b bytes.Buffer
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s\n", stamp, titleText)
	fmt.Fprintf(&b, "%s: %s\n", stamp, headerText)
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "%s: %s\t %d\t %d\t %d\t %d\t %d\n", stamp, row.Name,
			int64(row.Total), int64(row.Max), int64(row.Min), row.Count, int64(row.Average))
	}
	b.WriteString("\n")

	_, err := w.Write(b.Bytes())
	return err
}

// TemplateFormatter renders reports with a text/template that has the sprig
// function map available. The template receives a TemplateData value.
type TemplateFormatter struct {
	tmpl *template.Template
}

// TemplateData is the value passed to report templates
type TemplateData struct {
	FlushedAt time.Time
	Stamp     string
	Rows      []TemplateRow
}

// TemplateRow exposes a row with plain nanosecond integers for templates
type TemplateRow struct {
	Name    string
	Total   int64
	Max     int64
	Min     int64
	Count   uint64
	Average int64
}

// NewTemplateFormatter parses text as a report template
func NewTemplateFormatter(text string) (*TemplateFormatter, error) {
	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &TemplateFormatter{tmpl: tmpl}, nil
}

// Format executes the template into a buffer and writes it to w only when rendering succeeded
func (f *TemplateFormatter) Format(w io.Writer, r *Report) error {
	data := TemplateData{
		FlushedAt: r.FlushedAt,
		Stamp:     r.FlushedAt.Format(StampLayout),
		Rows:      make([]TemplateRow, 0, len(r.Rows)),
	}
	for _, row := range r.Rows {
		data.Rows = append(data.Rows, TemplateRow{
			Name:    row.Name,
			Total:   int64(row.Total),
			Max:     int64(row.Max),
			Min:     int64(row.Min),
			Count:   row.Count,
			Average: int64(row.Average),
		})
	}

	var b bytes.Buffer
	if err := f.tmpl.Execute(&b, data); err != nil {
		return fmt.Errorf("failed to render report template: %w", err)
	}
	_, err := w.Write(b.Bytes())
	return err
}
