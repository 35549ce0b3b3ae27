// Package audit cross-checks sequence orderings with a Datalog program.
//
// Rules become forbidden(Page, Before) facts and every sequence becomes
// placed(Seq, Pos, Page) facts. The violation relation is derived by Mangle,
// independently of the imperative scan in package ordering, and lists every
// offending pair rather than only the first one.
package audit

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"printqueue/internal/ordering"
)

// ErrFactLimit is returned when a batch needs more facts than the engine allows.
var ErrFactLimit = errors.New("fact limit exceeded")

const schema = `
Decl forbidden(Page, Before) bound [/string, /string].
Decl placed(Seq, Pos, Page) bound [/number, /number, /string].
Decl violation(Seq, Earlier, Later).

violation(S, E, L) :- placed(S, J, E), placed(S, I, L), J < I, forbidden(L, E).
`

// Violation is one pair of pages in the wrong order.
type Violation struct {
	Sequence int    `json:"sequence"`
	Earlier  string `json:"earlier"`
	Later    string `json:"later"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s before %s", v.Earlier, v.Later)
}

// Findings groups violations by sequence index.
type Findings struct {
	BySequence map[int][]Violation
	Facts      int
}

// Invalid reports whether sequence idx has at least one violation.
func (f *Findings) Invalid(idx int) bool {
	return len(f.BySequence[idx]) > 0
}

// Count returns the total number of violations.
func (f *Findings) Count() int {
	n := 0
	for _, vs := range f.BySequence {
		n += len(vs)
	}
	return n
}

// Auditor runs the violation program. It is not safe for concurrent use.
type Auditor struct {
	engine *Engine
	logger *zap.Logger
}

// NewAuditor builds an auditor with the given engine limits.
func NewAuditor(cfg EngineConfig, logger *zap.Logger) (*Auditor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.AutoEval = false
	engine := NewEngine(cfg)
	if err := engine.LoadSchemaString(schema); err != nil {
		return nil, err
	}
	return &Auditor{engine: engine, logger: logger}, nil
}

// Audit derives every violation of rules across seqs. The engine is cleared
// first, so an Auditor can be reused across batches.
func (a *Auditor) Audit(rules *ordering.RuleSet, seqs [][]string) (*Findings, error) {
	a.engine.Clear()

	var facts []Fact
	for _, r := range rules.Rules() {
		facts = append(facts, Fact{Predicate: "forbidden", Args: []interface{}{r.Page, r.Forbidden}})
	}
	for s, seq := range seqs {
		for pos, page := range seq {
			facts = append(facts, Fact{Predicate: "placed", Args: []interface{}{int64(s), int64(pos), page}})
		}
	}

	if err := a.engine.AddFacts(facts); err != nil {
		return nil, fmt.Errorf("load audit facts: %w", err)
	}
	if err := a.engine.Eval(); err != nil {
		return nil, err
	}

	derived, err := a.engine.GetFacts("violation")
	if err != nil {
		return nil, err
	}

	findings := &Findings{BySequence: make(map[int][]Violation), Facts: a.engine.FactCount()}
	for _, f := range derived {
		seq, ok := f.Args[0].(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected violation fact %v", f.Args)
		}
		earlier, _ := f.Args[1].(string)
		later, _ := f.Args[2].(string)
		v := Violation{Sequence: int(seq), Earlier: earlier, Later: later}
		findings.BySequence[v.Sequence] = append(findings.BySequence[v.Sequence], v)
	}
	for s := range findings.BySequence {
		sortViolations(findings.BySequence[s], seqs[s])
	}

	a.logger.Debug("audit complete",
		zap.Int("facts", findings.Facts),
		zap.Int("violations", findings.Count()))
	return findings, nil
}

// sortViolations orders violations by the position of the later page, then
// the earlier one, matching the scan order of the classifier.
func sortViolations(vs []Violation, seq []string) {
	pos := make(map[string]int, len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		pos[seq[i]] = i
	}
	sort.Slice(vs, func(i, j int) bool {
		if pos[vs[i].Later] != pos[vs[j].Later] {
			return pos[vs[i].Later] < pos[vs[j].Later]
		}
		if pos[vs[i].Earlier] != pos[vs[j].Earlier] {
			return pos[vs[i].Earlier] < pos[vs[j].Earlier]
		}
		if vs[i].Later != vs[j].Later {
			return vs[i].Later < vs[j].Later
		}
		return vs[i].Earlier < vs[j].Earlier
	})
}
