// Package render formats comparison reports as text, Markdown, HTML or JSON.
// Descriptive values are rounded to 2 decimals and statistics to 4 at display time only.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gocompare/domain/comparison"
	"gocompare/domain/core"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Format selects an output representation
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat parses a format name; "md" is accepted for markdown
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case "md", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML, FormatJSON:
		return f, nil
	}
	return "", core.NewConfigError("format", fmt.Sprintf("unknown format %q", s))
}

// Section is one titled report in a document
type Section struct {
	Title  string             `json:"title"`
	Report *comparison.Report `json:"report"`
	// Notes are printed under the title, e.g. the metric definition or dropped rows
	Notes []string `json:"notes,omitempty"`
}

// Labels name the two samples in tables
var Labels = [2]string{"Control", "Test"}

// Write renders a document of sections in the given format
func Write(w io.Writer, format Format, heading string, sections []Section) error {
	switch format {
	case FormatText:
		return Text(w, heading, sections)
	case FormatMarkdown:
		return Markdown(w, heading, sections)
	case FormatHTML:
		return HTML(w, heading, sections)
	case FormatJSON:
		return JSON(w, sections)
	}
	return core.NewConfigError("format", fmt.Sprintf("unknown format %q", format))
}

// Text renders aligned plain text
func Text(w io.Writer, heading string, sections []Section) error {
	var b strings.Builder
	if heading != "" {
		fmt.Fprintf(&b, "%s\n%s\n\n", heading, strings.Repeat("=", len(heading)))
	}

	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		r := s.Report
		fmt.Fprintf(&b, "== %s ==\n", s.Title)
		for _, n := range s.Notes {
			fmt.Fprintf(&b, "%s\n", n)
		}

		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "\t%s\t%s\t\n", Labels[0], Labels[1])
		for _, row := range descriptiveRows(r) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", row[0], row[1], row[2])
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(&b, "Normality %s: %s, %s\n", Labels[0], normalityLine(r.NormalityA), r.NormalityA.Interpretation())
		fmt.Fprintf(&b, "Normality %s: %s, %s\n", Labels[1], normalityLine(r.NormalityB), r.NormalityB.Interpretation())
		fmt.Fprintf(&b, "Variance: %s\n", varianceLine(r.Variance))
		fmt.Fprintf(&b, "Test: %s\n", comparisonLine(r.Comparison))
		fmt.Fprintf(&b, "Reason: %s\n", r.Comparison.Choice.Reason)
		if r.Comparison.FellBack() {
			fmt.Fprintf(&b, "Fallback: requested %s; %s\n", r.Comparison.Requested.DisplayName(), r.Comparison.FallbackReason)
		}
		fmt.Fprintf(&b, "H0: %s\nHa: %s\n", r.Verdict.NullHypothesis, r.Verdict.AltHypothesis)
		fmt.Fprintf(&b, "Verdict: %s (%s)\n", r.Verdict.Conclusion, decisionLine(r))
		if len(r.Caveats) > 0 {
			b.WriteString("Caveats:\n")
			for _, c := range r.Caveats {
				fmt.Fprintf(&b, "  - %s\n", c)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders a Markdown document
func Markdown(w io.Writer, heading string, sections []Section) error {
	_, err := w.Write(markdownBytes(heading, sections))
	return err
}

func markdownBytes(heading string, sections []Section) []byte {
	var b bytes.Buffer
	if heading != "" {
		fmt.Fprintf(&b, "# %s\n\n", heading)
	}

	for _, s := range sections {
		r := s.Report
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		for _, n := range s.Notes {
			fmt.Fprintf(&b, "%s\n\n", n)
		}

		fmt.Fprintf(&b, "| | %s | %s |\n|---|---:|---:|\n", Labels[0], Labels[1])
		for _, row := range descriptiveRows(r) {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", row[0], row[1], row[2])
		}
		b.WriteString("\n")

		fmt.Fprintf(&b, "- **Normality %s:** %s\n", Labels[0], normalityLine(r.NormalityA))
		fmt.Fprintf(&b, "- **Normality %s:** %s\n", Labels[1], normalityLine(r.NormalityB))
		fmt.Fprintf(&b, "- **Variance:** %s\n", varianceLine(r.Variance))
		fmt.Fprintf(&b, "- **Test:** %s\n", comparisonLine(r.Comparison))
		fmt.Fprintf(&b, "- **Reason:** %s\n", r.Comparison.Choice.Reason)
		if r.Comparison.FellBack() {
			fmt.Fprintf(&b, "- **Fallback:** requested %s; %s\n", r.Comparison.Requested.DisplayName(), r.Comparison.FallbackReason)
		}
		fmt.Fprintf(&b, "- **H0:** %s\n- **Ha:** %s\n\n", r.Verdict.NullHypothesis, r.Verdict.AltHypothesis)
		fmt.Fprintf(&b, "**Verdict:** %s (%s)\n\n", r.Verdict.Conclusion, decisionLine(r))

		if len(r.Caveats) > 0 {
			b.WriteString("> **Caveats**\n")
			for _, c := range r.Caveats {
				fmt.Fprintf(&b, "> - %s\n", c)
			}
			b.WriteString("\n")
		}
	}
	return b.Bytes()
}

// HTML renders the Markdown document as an HTML page
func HTML(w io.Writer, heading string, sections []Section) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: heading,
	})
	_, err := w.Write(markdown.ToHTML(markdownBytes(heading, sections), p, renderer))
	return err
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func descriptiveRows(r *comparison.Report) [][3]string {
	a, b := r.DescriptiveA, r.DescriptiveB
	return [][3]string{
		{"count", fmt.Sprintf("%d", a.Count), fmt.Sprintf("%d", b.Count)},
		{"mean", f2(a.Mean), f2(b.Mean)},
		{"std", f2(a.Std), f2(b.Std)},
		{"median", f2(a.Median), f2(b.Median)},
		{"min", f2(a.Min), f2(b.Min)},
		{"max", f2(a.Max), f2(b.Max)},
	}
}

func normalityLine(v comparison.DistributionVerdict) string {
	return fmt.Sprintf("%s stat=%s p=%s", v.Test, f4(v.Statistic), f4(v.PValue))
}

func varianceLine(v comparison.VarianceVerdict) string {
	state := "variances differ"
	if v.EqualVariance {
		state = "no evidence of unequal variances"
	}
	return fmt.Sprintf("%s W=%s p=%s, %s", v.Test, f4(v.Statistic), f4(v.PValue), state)
}

func comparisonLine(c comparison.ComparisonResult) string {
	s := fmt.Sprintf("%s statistic=%s p=%s", c.Method().DisplayName(), f4(c.Statistic), f4(c.PValue))
	if c.Method().Parametric() {
		s += fmt.Sprintf(" df=%s", f2(c.DegreesOfFreedom))
	}
	return s
}

func decisionLine(r *comparison.Report) string {
	op := ">"
	if r.Verdict.Significant() {
		op = "<="
	}
	return fmt.Sprintf("p=%s %s alpha=%s", f4(r.Verdict.PValue), op, trim(r.Alpha))
}

func f2(v float64) string { return fmt.Sprintf("%.2f", v) }
func f4(v float64) string { return fmt.Sprintf("%.4f", v) }

func trim(v float64) string {
	return fmt.Sprintf("%g", v)
}
