package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"gocompare/adapters/stats/engine"
	"gocompare/domain/comparison"
	"gocompare/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(t *testing.T, a, b []float64) *comparison.Report {
	t.Helper()
	r, err := engine.BuildReport(comparison.MustSample(a...), comparison.MustSample(b...), engine.DefaultConfig())
	require.NoError(t, err)
	return r
}

func sections(t *testing.T) []Section {
	return []Section{
		{Title: "Click", Report: report(t, []float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10})},
		{Title: "Flat", Report: report(t, []float64{5, 5, 5, 5, 5}, []float64{5, 5, 5, 5, 5}), Notes: []string{"dropped 1 row"}},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, "Experiment", sections(t)))
	out := buf.String()

	assert.Contains(t, out, "Experiment\n==========")
	assert.Contains(t, out, "== Click ==")
	assert.Contains(t, out, "Student's t-test statistic=-5.0000 p=0.0011 df=8.00")
	assert.Contains(t, out, "3.00")
	assert.Contains(t, out, "1.58")
	assert.Contains(t, out, "p=0.0011 <= alpha=0.05")
	assert.Contains(t, out, "treated as normal heuristically")
	assert.Contains(t, out, "dropped 1 row")
	assert.Contains(t, out, "Fallback: requested Student's t-test;")
	assert.Contains(t, out, "p=1.0000 > alpha=0.05")
}

func TestMarkdownAndHTML(t *testing.T) {
	var md bytes.Buffer
	require.NoError(t, Markdown(&md, "Experiment", sections(t)))
	assert.Contains(t, md.String(), "# Experiment")
	assert.Contains(t, md.String(), "| count | 5 | 5 |")
	assert.Contains(t, md.String(), "**Fallback:**")

	var page bytes.Buffer
	require.NoError(t, HTML(&page, "Experiment", sections(t)))
	assert.Contains(t, page.String(), "<table>")
	assert.Contains(t, page.String(), "<title>Experiment</title>")
	assert.Contains(t, page.String(), "Mann-Whitney U test")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, "", sections(t)[:1]))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	rep := decoded[0]["report"].(map[string]interface{})
	assert.Contains(t, rep, "verdict")
	assert.Equal(t, "student_t", rep["comparison"].(map[string]interface{})["choice"].(map[string]interface{})["method"])
}

func TestRenderingDoesNotMutateReports(t *testing.T) {
	s := sections(t)
	before := *s[0].Report
	before.Caveats = append([]string(nil), s[0].Report.Caveats...)

	for _, f := range []Format{FormatText, FormatMarkdown, FormatHTML, FormatJSON} {
		require.NoError(t, Write(&bytes.Buffer{}, f, "x", s))
	}
	assert.Equal(t, before, *s[0].Report)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "md": FormatMarkdown, "html": FormatHTML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Error(t, Write(&bytes.Buffer{}, Format("pdf"), "", nil))
}
