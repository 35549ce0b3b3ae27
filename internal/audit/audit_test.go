package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printqueue/internal/ordering"
)

func newAuditor(t *testing.T) *Auditor {
	t.Helper()
	a, err := NewAuditor(DefaultEngineConfig(), zap.NewNop())
	require.NoError(t, err)
	return a
}

func TestAuditListsEveryViolation(t *testing.T) {
	rules := ordering.RuleSetFrom([]ordering.Rule{
		{Page: "1", Forbidden: "2"},
		{Page: "1", Forbidden: "3"},
	})
	seqs := [][]string{
		{"2", "3", "1"},
		{"1", "2", "3"},
	}

	findings, err := newAuditor(t).Audit(rules, seqs)
	require.NoError(t, err)

	assert.True(t, findings.Invalid(0))
	assert.False(t, findings.Invalid(1))
	assert.Equal(t, []Violation{
		{Sequence: 0, Earlier: "2", Later: "1"},
		{Sequence: 0, Earlier: "3", Later: "1"},
	}, findings.BySequence[0])
	assert.Equal(t, 2, findings.Count())
}

func TestAuditAgreesWithClassifier(t *testing.T) {
	rules := ordering.RuleSetFrom([]ordering.Rule{
		{Page: "47", Forbidden: "53"},
		{Page: "97", Forbidden: "13"},
		{Page: "97", Forbidden: "61"},
		{Page: "20", Forbidden: "30"},
		{Page: "30", Forbidden: "10"},
	})
	seqs := [][]string{
		{"75", "47", "61", "53", "29"},
		{"53", "47"},
		{"97", "61", "13"},
		{"61", "97", "13"},
		{"42"},
		{"10", "20", "30"},
		{"30", "20", "10"},
	}

	findings, err := newAuditor(t).Audit(rules, seqs)
	require.NoError(t, err)

	for i, seq := range seqs {
		assert.Equal(t, !ordering.Valid(rules, seq), findings.Invalid(i), "sequence %d %v", i, seq)
	}
}

func TestAuditorIsReusable(t *testing.T) {
	rules := ordering.RuleSetFrom([]ordering.Rule{{Page: "A", Forbidden: "B"}})
	a := newAuditor(t)

	first, err := a.Audit(rules, [][]string{{"B", "A"}})
	require.NoError(t, err)
	assert.True(t, first.Invalid(0))

	second, err := a.Audit(rules, [][]string{{"A", "B"}})
	require.NoError(t, err)
	assert.Zero(t, second.Count())
}

func TestAuditFactLimit(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.FactLimit = 3
	a, err := NewAuditor(cfg, nil)
	require.NoError(t, err)

	rules := ordering.RuleSetFrom([]ordering.Rule{{Page: "1", Forbidden: "2"}})
	_, err = a.Audit(rules, [][]string{{"1", "2", "3", "4"}})
	assert.ErrorIs(t, err, ErrFactLimit)
}

func TestViolationString(t *testing.T) {
	v := Violation{Earlier: "61", Later: "97"}
	assert.Equal(t, "61 before 97", v.String())
}
