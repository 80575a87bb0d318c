// Package report renders a calculation as a printable PDF lab record.
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/phpdave11/gofpdf"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/calc/explain"
	"Thermolab/internal/calc/numfmt"
	"Thermolab/internal/calc/tracefmt"
	"Thermolab/internal/domain"
)

// Header is the student block printed at the top of the report.
type Header struct {
	Title       string `json:"title"`
	StudentName string `json:"student_name"`
	USN         string `json:"usn"`
	Date        string `json:"date"`
	Instructor  string `json:"instructor"`
}

// Write renders res as PDF into w.
func Write(w io.Writer, h Header, res engine.Result) error {
	if res.Failed() {
		return fmt.Errorf("report: calculation failed: %s", res.Error)
	}
	pdf := Build(h, res)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write pdf: %w", err)
	}
	return nil
}

// Build lays out the report. Chart rendering failures drop the chart, not
// the report.
func Build(h Header, res engine.Result) *gofpdf.Fpdf {
	if h.Title == "" {
		h.Title = res.Slug
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; student names and descriptions arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(h.Title), "", "L", false)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range [][2]string{
		{"Student", h.StudentName},
		{"USN", h.USN},
		{"Date", h.Date},
		{"Instructor", h.Instructor},
	} {
		if line[1] == "" {
			continue
		}
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s: %s", line[0], line[1])))
		pdf.Ln(6)
	}

	constants(pdf, tr, res.Constants)

	switch {
	case res.Conduction != nil:
		section(pdf, "Derivation")
		lines(pdf, tr, tracefmt.Lines(res.Steps))
		traceTable(pdf, tr, res)
		if res.Graphs != nil {
			if png, err := RodChart(res.Graphs.RodProfile); err == nil {
				image(pdf, "rod-profile", png)
			}
		}
	case res.Convection != nil:
		for _, ts := range res.TrialSteps {
			section(pdf, fmt.Sprintf("Trial %d", ts.Trial))
			lines(pdf, tr, tracefmt.Lines(ts.Steps))
		}
		if res.Graphs != nil {
			if png, err := TrialChart(res.Graphs.Trials); err == nil {
				image(pdf, "trial-temps", png)
			}
		}
		explanations(pdf, tr, res.ExplanationBlocks, res.FinalExplanation)
	}

	if len(res.Warnings) > 0 {
		section(pdf, "Warnings")
		lines(pdf, tr, res.Warnings)
	}
	return pdf
}

// Bytes renders the report into memory.
func Bytes(h Header, res engine.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, h, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func lines(pdf *gofpdf.Fpdf, tr func(string) string, ls []string) {
	for _, l := range ls {
		pdf.MultiCell(0, 5, tr(l), "", "L", false)
		pdf.Ln(1)
	}
}

func constants(pdf *gofpdf.Fpdf, tr func(string) string, c domain.Constants) {
	if len(c) == 0 {
		return
	}
	section(pdf, "Constants")
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		k := c[name]
		text := fmt.Sprintf("%s = %v %s", name, k.Value, k.Unit)
		if k.Description != "" {
			text += " (" + k.Description + ")"
		}
		pdf.MultiCell(0, 5, tr(strings.TrimSpace(text)), "", "L", false)
	}
}

func traceTable(pdf *gofpdf.Fpdf, tr func(string) string, res engine.Result) {
	if len(res.TraceTable) == 0 {
		return
	}
	section(pdf, "Trace")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 6, "Quantity", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Value", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Unit", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range res.TraceTable {
		pdf.CellFormat(60, 6, tr(row.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, numfmt.Num(row.Value), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tr(row.Unit), "1", 1, "L", false, 0, "")
	}
}

func explanations(pdf *gofpdf.Fpdf, tr func(string) string, blocks []explain.TrialBlock, summary *explain.Summary) {
	if len(blocks) == 0 && summary == nil {
		return
	}
	section(pdf, "Discussion")
	for _, b := range blocks {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Trial %d", b.Trial))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		lines(pdf, tr, b.Lines)
		for _, c := range b.Checklist {
			pdf.MultiCell(0, 5, tr("- "+c), "", "L", false)
		}
	}
	if summary != nil {
		section(pdf, "Conclusion")
		lines(pdf, tr, summary.Lines())
	}
}

func image(pdf *gofpdf.Fpdf, name string, png []byte) {
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if pdf.Err() {
		pdf.ClearError()
		return
	}
	pdf.Ln(4)
	pdf.ImageOptions(name, 15, pdf.GetY(), 180, 0, true, opts, 0, "")
}
