// Package report renders progress snapshots as markdown and PDF documents.
package report

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/refresher/internal/analytics"
	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/quiz"
)

const fallbackTemplateName = "progress-report.md.go.tmpl"

// recentSessions is the number of sessions listed in a report.
const recentSessions = 10

//go:embed templates/progress-report.md.go.tmpl
var fallbackTemplate string

// Data is the input of the report template.
type Data struct {
	GeneratedAt    time.Time
	Overview       analytics.Overview
	Subjects       []analytics.SubjectSummary
	Analytics      progress.Analytics
	Periods        analytics.PeriodResult
	RecentSessions []progress.SessionRecord
}

// NewData collects everything a report shows from one snapshot.
func NewData(engine *analytics.Engine, subjects *catalog.Catalog, snapshot *progress.Snapshot, now time.Time) Data {
	sessions := snapshot.Sessions
	if len(sessions) > recentSessions {
		sessions = sessions[len(sessions)-recentSessions:]
	}
	recent := make([]progress.SessionRecord, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		recent = append(recent, sessions[i])
	}

	return Data{
		GeneratedAt:    now,
		Overview:       engine.Overview(snapshot),
		Subjects:       analytics.SubjectProgress(subjects, snapshot),
		Analytics:      snapshot.Analytics,
		Periods:        analytics.CalculatePeriodStatistics(snapshot.Sessions, 0, 0),
		RecentSessions: recent,
	}
}

var funcMap = template.FuncMap{
	"join": strings.Join,
	"percent": func(value float64) string {
		return fmt.Sprintf("%.1f%%", value)
	},
	"duration": func(milliseconds any) string {
		switch v := milliseconds.(type) {
		case int64:
			return quiz.FormatDuration(float64(v))
		case float64:
			return quiz.FormatDuration(v)
		}
		return ""
	},
	"millis": progress.FromMillis,
	"date": func(t time.Time) string {
		return t.Format(time.DateOnly)
	},
}

// ParseTemplate reads the template at templatePath and falls back to the embedded template
// when the path is empty, missing or does not parse.
func ParseTemplate(templatePath string, logger *slog.Logger) (*template.Template, error) {
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			logger.Warn("failed to parse the report template, using the embedded one",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackTemplateName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

type Writer struct {
	template  *template.Template
	outputDir string
}

func NewWriter(tmpl *template.Template, outputDir string) *Writer {
	return &Writer{
		template:  tmpl,
		outputDir: outputDir,
	}
}

// WriteMarkdown renders data into <outputDir>/progress-report-<date>.md and returns the path.
func (w *Writer) WriteMarkdown(data Data) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", w.outputDir, err)
	}
	path := filepath.Join(w.outputDir, "progress-report-"+data.GeneratedAt.Format(time.DateOnly)+".md")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	if err := w.template.Execute(file, data); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("template.Execute() > %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("file.Close() > %w", err)
	}
	return path, nil
}

// ConvertMarkdownToPDF converts a markdown file into a PDF next to it and returns the PDF path.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
