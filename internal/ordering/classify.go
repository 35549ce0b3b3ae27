package ordering

// Valid reports whether seq satisfies rules. Every earlier page is checked
// against the forbidden set of every later page; the first hit stops the scan.
func Valid(rules *RuleSet, seq []string) bool {
	_, _, bad := FirstViolation(rules, seq)
	return !bad
}

// FirstViolation returns the first (i, j) pair, j < i, where seq[j] is in the
// forbidden set of seq[i]. ok is false when the sequence is valid.
func FirstViolation(rules *RuleSet, seq []string) (i, j int, ok bool) {
	if len(seq) == 1 {
		return 0, 0, false
	}
	for i = 1; i < len(seq); i++ {
		for j = 0; j < i; j++ {
			forbidden, found := rules.Forbidden(seq[i])
			if !found {
				continue
			}
			if _, hit := forbidden[seq[j]]; hit {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Partition splits seqs into valid and invalid sequences, keeping the input
// order within each list. The returned slices share the input sequences.
func Partition(rules *RuleSet, seqs [][]string) (valid, invalid [][]string) {
	for _, seq := range seqs {
		if Valid(rules, seq) {
			valid = append(valid, seq)
		} else {
			invalid = append(invalid, seq)
		}
	}
	return valid, invalid
}
