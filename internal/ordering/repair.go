package ordering

import "sort"

// Strategy selects how invalid sequences are reordered.
type Strategy string

const (
	// StrategyLegacy is the single forward swap pass. It is not guaranteed to
	// converge; callers should re-check the result with Valid.
	StrategyLegacy Strategy = "legacy"
	// StrategyTopological orders each sequence with Kahn's algorithm.
	StrategyTopological Strategy = "topological"
)

// ParseStrategy maps a config or flag value to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyLegacy, StrategyTopological:
		return Strategy(s), true
	case "":
		return StrategyLegacy, true
	}
	return "", false
}

// RepairWith dispatches to the repair function for strategy.
func RepairWith(strategy Strategy, rules *RuleSet, seqs [][]string) [][]string {
	if strategy == StrategyTopological {
		return RepairTopological(rules, seqs)
	}
	return Repair(rules, seqs)
}

// Repair reorders every sequence in place with one forward pass and returns
// seqs. For each i the inner loop walks j = 0..i-1, swapping seq[i] and
// seq[j] whenever seq[j] is forbidden before seq[i]. The forbidden set is
// re-read after each swap because seq[i] has changed. Earlier indices are
// never revisited.
func Repair(rules *RuleSet, seqs [][]string) [][]string {
	for _, seq := range seqs {
		repairPass(rules, seq)
	}
	return seqs
}

func repairPass(rules *RuleSet, seq []string) {
	for i := 1; i < len(seq); i++ {
		for j := 0; j < i; j++ {
			forbidden, ok := rules.Forbidden(seq[i])
			if !ok {
				continue
			}
			if _, hit := forbidden[seq[j]]; hit {
				seq[i], seq[j] = seq[j], seq[i]
			}
		}
	}
}

// RepairTopological reorders every sequence in place so that each page comes
// before the pages in its forbidden set, and returns seqs. Among pages that
// are free to go next, the one with the lowest original position wins, so a
// valid sequence is returned unchanged. A cycle is broken by emitting the
// earliest remaining page.
func RepairTopological(rules *RuleSet, seqs [][]string) [][]string {
	for _, seq := range seqs {
		copy(seq, topoOrder(rules, seq))
	}
	return seqs
}

func topoOrder(rules *RuleSet, seq []string) []string {
	n := len(seq)
	// edge u -> v: seq[u] must come before seq[v]
	succ := make([][]int, n)
	indeg := make([]int, n)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u != v && rules.Forbids(seq[u], seq[v]) {
				succ[u] = append(succ[u], v)
				indeg[v]++
			}
		}
	}

	done := make([]bool, n)
	ready := make([]int, 0, n)
	for u := 0; u < n; u++ {
		if indeg[u] == 0 {
			ready = append(ready, u)
		}
	}

	out := make([]string, 0, n)
	for len(out) < n {
		if len(ready) == 0 {
			for u := 0; u < n; u++ {
				if !done[u] {
					ready = append(ready, u)
					break
				}
			}
		}
		sort.Ints(ready)
		u := ready[0]
		ready = ready[1:]
		if done[u] {
			continue
		}
		done[u] = true
		out = append(out, seq[u])
		for _, v := range succ[u] {
			indeg[v]--
			if indeg[v] == 0 && !done[v] {
				ready = append(ready, v)
			}
		}
	}
	return out
}
