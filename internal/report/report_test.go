package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printqueue/internal/audit"
	"printqueue/internal/queue"
)

func sampleResult() *queue.Result {
	return &queue.Result{
		Strategy:    "legacy",
		Valid:       [][]string{{"75", "47", "61", "53", "29"}, {"42"}},
		Invalid:     [][]string{{"53", "47"}},
		ValidSum:    103,
		Repaired:    [][]string{{"47", "53"}},
		RepairedSum: 53,
	}
}

func TestFormatSequences(t *testing.T) {
	assert.Equal(t, "[]", FormatSequences(nil))
	assert.Equal(t, "[[1,2] [3]]", FormatSequences([][]string{{"1", "2"}, {"3"}}))
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextRenderer{}.Render(&buf, sampleResult()))

	want := strings.Join([]string{
		"correct_pages [[75,47,61,53,29] [42]]",
		"faulty_pages [[53,47]]",
		"sum 103",
		"reordered_pages [[47,53]]",
		"sum_reordered 53",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTextRendererUnresolvedAndAudit(t *testing.T) {
	res := sampleResult()
	res.Unresolved = []int{0}
	res.InvalidFindings = &audit.Findings{BySequence: map[int][]audit.Violation{
		0: {{Sequence: 0, Earlier: "53", Later: "47"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, TextRenderer{}.Render(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "unresolved [0]\n")
	assert.Contains(t, out, "violations [53,47] 53 before 47\n")
}

func TestJSONRenderer(t *testing.T) {
	res := sampleResult()
	res.InvalidFindings = &audit.Findings{BySequence: map[int][]audit.Violation{
		0: {{Sequence: 0, Earlier: "53", Later: "47"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(&buf, res))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "legacy", got["strategy"])
	assert.Equal(t, float64(103), got["sum"])
	assert.Equal(t, float64(53), got["sum_reordered"])
	assert.Len(t, got["correct_pages"], 2)
	assert.Len(t, got["violations"], 1)
	assert.NotContains(t, got, "unresolved")
	assert.NotContains(t, got, "remaining")
}

func TestStyledRendererKeepsLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStyledRenderer().Render(&buf, sampleResult()))

	out := buf.String()
	for _, label := range []string{"correct_pages", "faulty_pages", "sum", "reordered_pages", "sum_reordered"} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "103")
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "text", "json", "styled"} {
		r, err := New(format)
		require.NoError(t, err, format)
		assert.NotNil(t, r)
	}
	_, err := New("xml")
	assert.Error(t, err)
}
