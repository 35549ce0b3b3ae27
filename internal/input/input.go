// Package input reads the line-oriented page-ordering format.
//
// A line containing "|" is a rule line ("X|Y"); extra "|" tokens are ignored.
// Otherwise a line containing "," is a sequence line ("a,b,c"). Every other
// line, blank ones included, is skipped.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"printqueue/internal/ordering"
)

// ErrNotFound is returned by Load when the input path does not exist.
var ErrNotFound = errors.New("input file not found")

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Input is the parsed content of one input source.
type Input struct {
	Rules     *ordering.RuleSet
	Sequences [][]string
	RuleLines int // lines that contributed a rule, duplicates included
	Skipped   int // lines that were neither rules nor sequences
}

// Load opens path and parses it.
func Load(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return in, nil
}

// Parse reads rule and sequence lines from r.
func Parse(r io.Reader) (*Input, error) {
	in := &Input{Rules: ordering.NewRuleSet()}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.Contains(line, "|"):
			rule := ParseRule(line)
			in.Rules.Add(rule.Page, rule.Forbidden)
			in.RuleLines++
		case strings.Contains(line, ","):
			in.Sequences = append(in.Sequences, strings.Split(line, ","))
		default:
			in.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

// ParseRule splits an "X|Y" line. Only the first two tokens are used.
// The caller guarantees the line contains "|".
func ParseRule(line string) ordering.Rule {
	parts := strings.SplitN(line, "|", 3)
	return ordering.Rule{Page: parts[0], Forbidden: parts[1]}
}
