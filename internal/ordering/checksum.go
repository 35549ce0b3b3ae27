package ordering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptySequence is returned when a sequence has no middle element.
var ErrEmptySequence = errors.New("empty sequence has no middle page")

// NonIntegerError reports a middle page that does not parse as an integer.
type NonIntegerError struct {
	Index int    // position of the sequence in the batch
	Page  string // offending token
	Err   error
}

func (e *NonIntegerError) Error() string {
	return fmt.Sprintf("sequence %d: middle page %q is not an integer: %v", e.Index, e.Page, e.Err)
}

func (e *NonIntegerError) Unwrap() error { return e.Err }

// Middle returns the element at len(seq)/2. For even lengths this is the
// element just after the midpoint.
func Middle(seq []string) (string, error) {
	if len(seq) == 0 {
		return "", ErrEmptySequence
	}
	return seq[len(seq)/2], nil
}

// MiddleSum adds up the middle page of every sequence. An empty batch sums to 0.
func MiddleSum(seqs [][]string) (int, error) {
	sum := 0
	for idx, seq := range seqs {
		page, err := Middle(seq)
		if err != nil {
			return 0, fmt.Errorf("sequence %d: %w", idx, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(page))
		if err != nil {
			return 0, &NonIntegerError{Index: idx, Page: page, Err: err}
		}
		sum += n
	}
	return sum, nil
}
