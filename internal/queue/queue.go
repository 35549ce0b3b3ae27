// Package queue runs one batch: classify, checksum, repair, re-check, checksum.
package queue

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"printqueue/internal/audit"
	"printqueue/internal/input"
	"printqueue/internal/logging"
	"printqueue/internal/ordering"
)

// Options controls a run.
type Options struct {
	Strategy ordering.Strategy
	Audit    bool
	// FactLimit caps the audit engine; 0 means unlimited.
	FactLimit int
	Logger    *logging.Logger
}

// Result is everything the report needs.
type Result struct {
	Strategy    ordering.Strategy `json:"strategy"`
	Valid       [][]string        `json:"correct_pages"`
	Invalid     [][]string        `json:"faulty_pages"`
	ValidSum    int               `json:"sum"`
	Repaired    [][]string        `json:"reordered_pages"`
	RepairedSum int               `json:"sum_reordered"`
	// Unresolved holds indices into Repaired that still fail classification.
	Unresolved []int `json:"unresolved,omitempty"`

	// Audit output, present only when the audit ran.
	InvalidFindings  *audit.Findings `json:"-"`
	RepairedFindings *audit.Findings `json:"-"`
}

// Run processes in and returns the batch result. Only checksum failures are
// fatal; audit problems are logged and skipped.
func Run(in *input.Input, opts Options) (*Result, error) {
	if in == nil {
		return nil, errors.New("nil input")
	}
	if opts.Strategy == "" {
		opts.Strategy = ordering.StrategyLegacy
	}
	log := opts.Logger

	log.Get(logging.CategoryParse).Info("input loaded",
		zap.Int("rule_lines", in.RuleLines),
		zap.Int("rule_pages", in.Rules.Len()),
		zap.Int("sequences", len(in.Sequences)),
		zap.Int("skipped_lines", in.Skipped))

	valid, invalid := ordering.Partition(in.Rules, in.Sequences)
	if valid == nil {
		valid = [][]string{}
	}
	if invalid == nil {
		invalid = [][]string{}
	}
	classifyLog := log.Get(logging.CategoryClassify)
	classifyLog.Info("sequences classified",
		zap.Int("valid", len(valid)),
		zap.Int("invalid", len(invalid)))
	for _, seq := range invalid {
		if i, j, ok := ordering.FirstViolation(in.Rules, seq); ok {
			classifyLog.Debug("first violation",
				zap.Strings("sequence", seq),
				zap.String("earlier", seq[j]),
				zap.String("later", seq[i]))
		}
	}

	res := &Result{
		Strategy: opts.Strategy,
		Valid:    valid,
		Invalid:  cloneAll(invalid),
	}

	var err error
	if res.ValidSum, err = ordering.MiddleSum(valid); err != nil {
		return nil, fmt.Errorf("checksum of valid sequences: %w", err)
	}

	var auditor *audit.Auditor
	if opts.Audit {
		auditor, err = audit.NewAuditor(audit.EngineConfig{FactLimit: opts.FactLimit}, log.Get(logging.CategoryAudit))
		if err != nil {
			log.Get(logging.CategoryAudit).Warn("audit disabled", zap.Error(err))
		} else {
			res.InvalidFindings = runAudit(auditor, log, in.Rules, res.Invalid)
		}
	}

	res.Repaired = ordering.RepairWith(opts.Strategy, in.Rules, invalid)
	repairLog := log.Get(logging.CategoryRepair)
	for idx, seq := range res.Repaired {
		if ordering.Valid(in.Rules, seq) {
			continue
		}
		res.Unresolved = append(res.Unresolved, idx)
		i, j, _ := ordering.FirstViolation(in.Rules, seq)
		repairLog.Warn("repaired sequence still violates rules",
			zap.Int("index", idx),
			zap.Strings("sequence", seq),
			zap.String("earlier", seq[j]),
			zap.String("later", seq[i]),
			zap.String("strategy", string(opts.Strategy)))
	}
	repairLog.Info("repair finished",
		zap.Int("repaired", len(res.Repaired)),
		zap.Int("unresolved", len(res.Unresolved)))

	if auditor != nil && len(res.Unresolved) > 0 {
		res.RepairedFindings = runAudit(auditor, log, in.Rules, res.Repaired)
	}

	if res.RepairedSum, err = ordering.MiddleSum(res.Repaired); err != nil {
		return nil, fmt.Errorf("checksum of repaired sequences: %w", err)
	}
	return res, nil
}

func runAudit(a *audit.Auditor, log *logging.Logger, rules *ordering.RuleSet, seqs [][]string) *audit.Findings {
	findings, err := a.Audit(rules, seqs)
	if err != nil {
		log.Get(logging.CategoryAudit).Warn("audit skipped", zap.Error(err))
		return nil
	}
	return findings
}

func cloneAll(seqs [][]string) [][]string {
	out := make([][]string, len(seqs))
	for i, seq := range seqs {
		out[i] = append([]string(nil), seq...)
	}
	return out
}
