package solve

import (
	"github.com/shopspring/decimal"
)

// gaussianSolve solves a·x = b by Gauss-Jordan elimination with partial
// pivoting, entirely in decimal arithmetic. a is m rows by n columns and
// is consumed (modified in place); the caller passes freshly built
// slices.
//
// The system need not be square. Unknowns whose column never yields a
// pivot (rank deficiency) are left at zero. A row that eliminates to
// zero coefficients but a right-hand side beyond tol means the system is
// inconsistent and ErrNoExactSolution is returned.
func gaussianSolve(a [][]decimal.Decimal, b []decimal.Decimal, prec int32, tol decimal.Decimal) ([]decimal.Decimal, error) {
	m := len(a)
	if m == 0 {
		return nil, ErrNoExactSolution
	}
	n := len(a[0])

	// Entries are exact composition decimals going in, but elimination
	// divides and rounds, so "zero" below means "beyond half the working
	// precision": genuine coefficients live many orders of magnitude
	// above this.
	eps := decimal.New(1, -(prec / 2))
	isZero := func(d decimal.Decimal) bool {
		return d.Abs().Cmp(eps) < 0
	}

	pivotRowOf := make([]int, n) // column -> pivot row
	for i := range pivotRowOf {
		pivotRowOf[i] = -1
	}

	next := 0 // next pivot row
	for col := 0; col < n && next < m; col++ {
		// Partial pivoting: largest magnitude in the column.
		best := -1
		for r := next; r < m; r++ {
			if isZero(a[r][col]) {
				continue
			}
			if best == -1 || a[r][col].Abs().Cmp(a[best][col].Abs()) > 0 {
				best = r
			}
		}
		if best == -1 {
			continue // free column
		}
		a[next], a[best] = a[best], a[next]
		b[next], b[best] = b[best], b[next]

		// Normalize the pivot row.
		pivot := a[next][col]
		for c := col; c < n; c++ {
			a[next][c] = a[next][c].DivRound(pivot, prec)
		}
		b[next] = b[next].DivRound(pivot, prec)

		// Eliminate the column from every other row.
		for r := 0; r < m; r++ {
			if r == next || isZero(a[r][col]) {
				continue
			}
			factor := a[r][col]
			for c := col; c < n; c++ {
				a[r][c] = a[r][c].Sub(factor.Mul(a[next][c]))
			}
			b[r] = b[r].Sub(factor.Mul(b[next]))
		}

		pivotRowOf[col] = next
		next++
	}

	// Rows beyond the rank must have (near) zero right-hand sides.
	for r := next; r < m; r++ {
		if b[r].Abs().Cmp(tol) > 0 {
			return nil, ErrNoExactSolution
		}
	}

	x := make([]decimal.Decimal, n)
	for col := 0; col < n; col++ {
		if row := pivotRowOf[col]; row >= 0 {
			x[col] = b[row]
		} else {
			x[col] = decimal.Zero
		}
	}
	return x, nil
}
