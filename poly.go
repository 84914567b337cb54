package symgo

// The polynomial view is an optimization structure for the solver and the
// simplifier: an ordered coefficient list tied to one variable, always
// re-derivable from a generic tree. Coefficients are expressions, not
// numbers, so parametric polynomials (coefficients in other free variables)
// flow through every formula symbolically.

import (
	"fmt"
)

// Degree returns the degree of e viewed as a polynomial in name. Non-
// polynomial subtrees count as degree 0; gate with IsPolynomial when that
// distinction matters.
func Degree(e Expr, name string) int {
	switch v := e.Simplify().(type) {
	case *Sym:
		if v.name == name {
			return 1
		}
		return 0
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && !n.IsNegative() {
			return int(n.val.Num().Int64()) * Degree(v.base, name)
		}
		return 0
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := Degree(t, name); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += Degree(f, name)
		}
		return total
	}
	return 0
}

// IsPolynomial reports whether e, restricted to the named variable, is a
// finite nonnegative-integer-power polynomial. In strict mode the tree is
// checked as-is, so transcendental sub-terms in the variable fail even when
// they would cancel; otherwise the tree is expanded and simplified first.
func IsPolynomial(e Expr, name string, strict bool) bool {
	target := e
	if !strict {
		target = Expand(e)
	}
	return isPolyNode(target, name)
}

func isPolyNode(e Expr, name string) bool {
	switch v := e.(type) {
	case *Num, *Cmplx, *Sym:
		return true
	case *Add:
		for _, t := range v.terms {
			if !isPolyNode(t, name) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !isPolyNode(f, name) {
				return false
			}
		}
		return true
	case *Pow:
		if !DependsOn(v.base, name) && !DependsOn(v.exp, name) {
			return true
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || n.IsNegative() {
			return false
		}
		return isPolyNode(v.base, name)
	case *Func:
		return !DependsOn(v.arg, name)
	case *Mod:
		return !DependsOn(v.a, name) && !DependsOn(v.b, name)
	}
	return false
}

// PolyCoeffs extracts the coefficient of each power of name from the
// expanded form of e. Coefficients may be expressions in other variables.
func PolyCoeffs(e Expr, name string) map[int]Expr {
	out := map[int]Expr{}
	extractCoeffs(Expand(e), name, out)
	return out
}

func extractCoeffs(e Expr, name string, out map[int]Expr) {
	switch v := e.(type) {
	case *Num:
		addCoeff(out, 0, v)
	case *Cmplx:
		addCoeff(out, 0, v)
	case *Sym:
		if v.name == name {
			addCoeff(out, 1, N(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == name {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() && n.IsPositive() {
				addCoeff(out, int(n.val.Num().Int64()), N(1))
				return
			}
		}
		addCoeff(out, 0, e)
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, name); d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		var coeff Expr
		switch len(coeffFactors) {
		case 0:
			coeff = N(1)
		case 1:
			coeff = coeffFactors[0]
		default:
			coeff = MulOf(coeffFactors...)
		}
		addCoeff(out, deg, coeff)
	case *Add:
		for _, t := range v.terms {
			extractCoeffs(t, name, out)
		}
	default:
		addCoeff(out, 0, e)
	}
}

func addCoeff(out map[int]Expr, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val).Simplify()
	} else {
		out[deg] = val.Simplify()
	}
}

// ============================================================
// Polynomial — ordered coefficient view
// ============================================================

// Polynomial is the coefficient-list view of an expression in one variable.
// Coeffs is ascending: Coeffs[i] multiplies Variable^i. After trim the
// leading coefficient of a nonzero polynomial is not the literal zero.
type Polynomial struct {
	Variable string
	Coeffs   []Expr
}

// PolyFromExpr derives the coefficient view, failing with ErrNotPolynomial
// when e is not polynomial in name.
func PolyFromExpr(e Expr, name string) (*Polynomial, error) {
	if !IsPolynomial(e, name, false) {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotPolynomial, e.String(), name)
	}
	byDeg := PolyCoeffs(e, name)
	maxDeg := 0
	for d := range byDeg {
		if d > maxDeg {
			maxDeg = d
		}
	}
	coeffs := make([]Expr, maxDeg+1)
	for i := range coeffs {
		if c, ok := byDeg[i]; ok {
			coeffs[i] = c
		} else {
			coeffs[i] = N(0)
		}
	}
	p := &Polynomial{Variable: name, Coeffs: coeffs}
	p.trim()
	return p, nil
}

func (p *Polynomial) trim() {
	i := len(p.Coeffs)
	for i > 1 {
		if n, ok := p.Coeffs[i-1].(*Num); ok && n.IsZero() {
			i--
			continue
		}
		break
	}
	p.Coeffs = p.Coeffs[:i]
}

// Degree of the trimmed coefficient list.
func (p *Polynomial) Degree() int { return len(p.Coeffs) - 1 }

// Coeff returns the coefficient of Variable^i, zero beyond the list.
func (p *Polynomial) Coeff(i int) Expr {
	if i < 0 || i >= len(p.Coeffs) {
		return N(0)
	}
	return p.Coeffs[i]
}

// ToExpr rebuilds the tree in Horner form.
func (p *Polynomial) ToExpr() Expr {
	if len(p.Coeffs) == 0 {
		return N(0)
	}
	x := S(p.Variable)
	e := p.Coeffs[len(p.Coeffs)-1]
	for i := len(p.Coeffs) - 2; i >= 0; i-- {
		e = AddOf(MulOf(e, x), p.Coeffs[i])
	}
	return e.Simplify()
}

// Derivative returns the coefficient view of dp/dVariable.
func (p *Polynomial) Derivative() *Polynomial {
	if len(p.Coeffs) <= 1 {
		return &Polynomial{Variable: p.Variable, Coeffs: []Expr{N(0)}}
	}
	out := make([]Expr, len(p.Coeffs)-1)
	for i := 1; i < len(p.Coeffs); i++ {
		out[i-1] = MulOf(N(int64(i)), p.Coeffs[i]).Simplify()
	}
	d := &Polynomial{Variable: p.Variable, Coeffs: out}
	d.trim()
	return d
}

// EvalAt substitutes a value for the variable via Horner evaluation.
func (p *Polynomial) EvalAt(x Expr) Expr {
	if len(p.Coeffs) == 0 {
		return N(0)
	}
	e := p.Coeffs[len(p.Coeffs)-1]
	for i := len(p.Coeffs) - 2; i >= 0; i-- {
		e = AddOf(MulOf(e, x), p.Coeffs[i]).Simplify()
	}
	return e
}

// IsNumeric reports whether every coefficient is a rational literal.
func (p *Polynomial) IsNumeric() bool {
	for _, c := range p.Coeffs {
		if _, ok := c.Const(); !ok {
			return false
		}
	}
	return true
}

// FloatCoeffs narrows numeric coefficients to float64, ascending.
func (p *Polynomial) FloatCoeffs() ([]float64, bool) {
	out := make([]float64, len(p.Coeffs))
	for i, c := range p.Coeffs {
		n, ok := c.Const()
		if !ok {
			return nil, false
		}
		out[i] = n.Float64()
	}
	return out, true
}

// ============================================================
// RationalFunc — numerator/denominator polynomial pair
// ============================================================

// RationalFunc pairs a numerator and denominator polynomial over the same
// variable. The solver and simplifier use it to cancel shared structure
// before falling back to generic tree division.
type RationalFunc struct {
	Num, Den *Polynomial
}

// RationalFromExpr derives the pair view of num/den in name.
func RationalFromExpr(num, den Expr, name string) (*RationalFunc, error) {
	np, err := PolyFromExpr(num, name)
	if err != nil {
		return nil, err
	}
	dp, err := PolyFromExpr(den, name)
	if err != nil {
		return nil, err
	}
	return &RationalFunc{Num: np, Den: dp}, nil
}

// Reduce cancels the shared power of the variable (common x^k factor) and
// returns the reduced pair. Symbolic coefficients block deeper cancellation.
func (r *RationalFunc) Reduce() *RationalFunc {
	shift := 0
	for shift < len(r.Num.Coeffs)-1 && shift < len(r.Den.Coeffs)-1 {
		nz, nok := r.Num.Coeffs[shift].(*Num)
		dz, dok := r.Den.Coeffs[shift].(*Num)
		if !nok || !dok || !nz.IsZero() || !dz.IsZero() {
			break
		}
		shift++
	}
	if shift == 0 {
		return r
	}
	return &RationalFunc{
		Num: &Polynomial{Variable: r.Num.Variable, Coeffs: r.Num.Coeffs[shift:]},
		Den: &Polynomial{Variable: r.Den.Variable, Coeffs: r.Den.Coeffs[shift:]},
	}
}

// ToExpr rebuilds the quotient tree.
func (r *RationalFunc) ToExpr() Expr {
	return DivOf(r.Num.ToExpr(), r.Den.ToExpr())
}
