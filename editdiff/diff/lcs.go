package diff

import (
	"fmt"
	"math"
	"slices"
)

const debug bool = false

// Pair identifies two equal tokens, X in the original and Y in the edited sequence.
type Pair struct {
	X, Y int
}

// Alignment is a longest common subsequence of two token sequences, expressed as index pairs.
// Both X and Y are strictly increasing.
type Alignment []Pair

// Align computes a longest common subsequence of x and y.
//
// If there is more than one longest common subsequence, Align deterministically picks the one
// found by walking the LCS table from the end and preferring to drop a token of x over dropping
// a token of y whenever both lead to an equally long subsequence.
func Align(x, y []string) Alignment {
	t := buildTable(x, y)
	return backtrack(t, x, y)
}

// table stores the length of the longest common subsequence of x[:i] and y[:j] at (i, j). The
// table is stored in a flat slice with rows of len(y)+1 columns.
type table struct {
	v          []int
	rows, cols int
}

func (t *table) get(i, j int) int    { return t.v[t.index(i, j)] }
func (t *table) set(i, j int, v int) { t.v[t.index(i, j)] = v }

func (t *table) index(i, j int) int {
	if debug {
		if i < 0 || i >= t.rows {
			panic(fmt.Sprintf("i must be in [0, %v) but is %v", t.rows, i))
		}
		if j < 0 || j >= t.cols {
			panic(fmt.Sprintf("j must be in [0, %v) but is %v", t.cols, j))
		}
	}
	return i*t.cols + j
}

func buildTable(x, y []string) table {
	rows, cols := len(x)+1, len(y)+1
	if cols > math.MaxInt/rows {
		panic("inputs too large")
	}

	// Row 0 and column 0 stay zero, they represent the empty prefix.
	t := table{
		v:    make([]int, rows*cols),
		rows: rows,
		cols: cols,
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			if x[i-1] == y[j-1] {
				t.set(i, j, t.get(i-1, j-1)+1)
			} else {
				t.set(i, j, max(t.get(i-1, j), t.get(i, j-1)))
			}
		}
	}
	return t
}

func backtrack(t table, x, y []string) Alignment {
	if t.rows != len(x)+1 || t.cols != len(y)+1 {
		panic(fmt.Sprintf("table of size %vx%v doesn't match inputs of length %v and %v", t.rows, t.cols, len(x), len(y)))
	}

	row, col := len(x), len(y)
	n := t.get(row, col)
	if n == 0 {
		return nil
	}

	// Pairs are discovered from the end and reversed in place once done.
	a := make(Alignment, 0, n)
	for t.get(row, col) > 0 {
		if x[row-1] == y[col-1] {
			a = append(a, Pair{row - 1, col - 1})
			row--
			col--
			continue
		}
		// On a tie, drop the token from x.
		if t.get(row-1, col) >= t.get(row, col-1) {
			row--
		} else {
			col--
		}
	}

	if debug {
		if len(a) != n {
			panic("invariant violation")
		}
	}

	slices.Reverse(a)
	return a
}
