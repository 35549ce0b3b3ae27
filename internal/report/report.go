// Package report renders a run result to a writer.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"printqueue/internal/audit"
	"printqueue/internal/queue"
)

// Renderer writes a result in one output format.
type Renderer interface {
	Render(w io.Writer, res *queue.Result) error
}

// New returns the renderer for format: text, json or styled.
func New(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return TextRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	case "styled":
		return NewStyledRenderer(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// FormatSequences prints sequences as [[75,47,61] [97,13]].
func FormatSequences(seqs [][]string) string {
	parts := make([]string, len(seqs))
	for i, seq := range seqs {
		parts[i] = "[" + strings.Join(seq, ",") + "]"
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = fmt.Sprint(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// line is one labelled row of the text layouts.
type line struct {
	label string
	value string
	sum   bool
}

// lines is the shared row order of the text and styled layouts.
func lines(res *queue.Result) []line {
	out := []line{
		{label: "correct_pages", value: FormatSequences(res.Valid)},
		{label: "faulty_pages", value: FormatSequences(res.Invalid)},
		{label: "sum", value: fmt.Sprint(res.ValidSum), sum: true},
		{label: "reordered_pages", value: FormatSequences(res.Repaired)},
		{label: "sum_reordered", value: fmt.Sprint(res.RepairedSum), sum: true},
	}
	if len(res.Unresolved) > 0 {
		out = append(out, line{label: "unresolved", value: formatIndices(res.Unresolved)})
	}
	return out
}

// auditLines explains each flagged sequence, one violation list per line.
func auditLines(label string, seqs [][]string, f *audit.Findings) []line {
	if f == nil {
		return nil
	}
	var out []line
	for i, seq := range seqs {
		vs := f.BySequence[i]
		if len(vs) == 0 {
			continue
		}
		parts := make([]string, len(vs))
		for k, v := range vs {
			parts[k] = v.String()
		}
		out = append(out, line{
			label: label,
			value: "[" + strings.Join(seq, ",") + "] " + strings.Join(parts, "; "),
		})
	}
	return out
}

func allLines(res *queue.Result) []line {
	out := lines(res)
	out = append(out, auditLines("violations", res.Invalid, res.InvalidFindings)...)
	out = append(out, auditLines("remaining", res.Repaired, res.RepairedFindings)...)
	return out
}

// TextRenderer prints one "label value" pair per line.
type TextRenderer struct{}

// Render implements Renderer.
func (TextRenderer) Render(w io.Writer, res *queue.Result) error {
	for _, l := range allLines(res) {
		if _, err := fmt.Fprintf(w, "%s %s\n", l.label, l.value); err != nil {
			return err
		}
	}
	return nil
}

// JSONRenderer prints the result as one indented JSON document.
type JSONRenderer struct{}

type jsonReport struct {
	*queue.Result
	Violations []audit.Violation `json:"violations,omitempty"`
	Remaining  []audit.Violation `json:"remaining,omitempty"`
}

// Render implements Renderer.
func (JSONRenderer) Render(w io.Writer, res *queue.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Result:     res,
		Violations: flatten(res.InvalidFindings, len(res.Invalid)),
		Remaining:  flatten(res.RepairedFindings, len(res.Repaired)),
	})
}

func flatten(f *audit.Findings, n int) []audit.Violation {
	if f == nil {
		return nil
	}
	var out []audit.Violation
	for i := 0; i < n; i++ {
		out = append(out, f.BySequence[i]...)
	}
	return out
}
