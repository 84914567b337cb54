package symgo

import (
	"fmt"
	"math"
)

// Solutions is the outcome of solving one equation for one variable. An
// identity (residual simplifies to zero) has no finite root list; Roots
// preserves multiplicity, so a triple root appears three times.
type Solutions struct {
	Roots    []Expr
	Identity bool
}

// Solve finds the values of name satisfying eq. The residual LHS-RHS is
// simplified first, then dispatched: factored products recurse per factor,
// powers multiply root multiplicity, polynomials up to degree three get
// closed forms, and anything with a single occurrence of the variable is
// inverted node by node.
func Solve(eq *Equation, name string) (*Solutions, error) {
	return solveResidual(eq.Residual().Simplify(), name)
}

func solveResidual(residual Expr, name string) (*Solutions, error) {
	if n, ok := residual.(*Num); ok && n.IsZero() {
		return &Solutions{Identity: true}, nil
	}
	if !DependsOn(residual, name) {
		return &Solutions{}, nil
	}

	if m, ok := residual.(*Mul); ok {
		if sols, handled, err := solveFactored(m, name); handled {
			return sols, err
		}
	}
	if p, ok := residual.(*Pow); ok {
		if n, ok2 := p.exp.(*Num); ok2 && n.IsInteger() && n.IsPositive() {
			base, err := solveResidual(p.base.Simplify(), name)
			if err != nil {
				return nil, err
			}
			if base.Identity {
				return base, nil
			}
			mult := int(n.val.Num().Int64())
			out := &Solutions{}
			for _, r := range base.Roots {
				for i := 0; i < mult; i++ {
					out.Roots = append(out.Roots, r)
				}
			}
			return out, nil
		}
	}

	p, perr := PolyFromExpr(residual, name)
	if perr == nil {
		sols, err := solvePolynomial(p)
		if err == nil {
			return sols, nil
		}
		if sols, ierr := solveByIsolation(residual, name); ierr == nil {
			return sols, nil
		}
		return nil, err
	}
	if sols, ierr := solveByIsolation(residual, name); ierr == nil {
		return sols, nil
	}
	return nil, perr
}

// solveFactored solves a product by its variable-dependent factors and
// merges the structurally distinct roots in encounter order.
func solveFactored(m *Mul, name string) (*Solutions, bool, error) {
	dep := []Expr{}
	for _, f := range m.factors {
		if DependsOn(f, name) {
			dep = append(dep, f)
		}
	}
	if len(dep) < 2 {
		return nil, false, nil
	}
	out := &Solutions{}
	for _, f := range dep {
		fs, err := solveResidual(f.Simplify(), name)
		if err != nil {
			return nil, true, err
		}
		if fs.Identity {
			return fs, true, nil
		}
		for _, r := range fs.Roots {
			if !containsExpr(out.Roots, r) {
				out.Roots = append(out.Roots, r)
			}
		}
	}
	return out, true, nil
}

func containsExpr(list []Expr, e Expr) bool {
	for _, x := range list {
		if x.Equal(e) {
			return true
		}
	}
	return false
}

// solvePolynomial dispatches the coefficient view by degree. Linear and
// quadratic handle symbolic coefficients; the cubic needs numeric ones.
func solvePolynomial(p *Polynomial) (*Solutions, error) {
	switch p.Degree() {
	case 0:
		// A zero constant means the residual vanished under expansion even
		// though it was not structurally zero, e.g. (x+1)^2 - (x^2+2x+1).
		if n, ok := p.Coeff(0).(*Num); ok && n.IsZero() {
			return &Solutions{Identity: true}, nil
		}
		return &Solutions{}, nil
	case 1:
		return solveLinear(p.Coeff(1), p.Coeff(0)), nil
	case 2:
		return solveQuadratic(p.Coeff(2), p.Coeff(1), p.Coeff(0)), nil
	case 3:
		return solveCubic(p)
	}
	return nil, fmt.Errorf("%w: degree %d in %s", ErrUnsupportedDegree, p.Degree(), p.Variable)
}

// solveLinear solves a*x + b = 0 with symbolic coefficients.
func solveLinear(a, b Expr) *Solutions {
	return &Solutions{Roots: []Expr{DivOf(NegOf(b), a).Simplify()}}
}

// solveQuadratic solves a*x^2 + b*x + c = 0. Numeric coefficients get
// concrete roots, a complex conjugate pair when the discriminant is
// negative; symbolic ones get the closed quadratic formula.
func solveQuadratic(a, b, c Expr) *Solutions {
	an, aok := a.Const()
	bn, bok := b.Const()
	cn, cok := c.Const()
	if !aok || !bok || !cok {
		disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
		denom := MulOf(N(2), a)
		x1 := DivOf(AddOf(NegOf(b), SqrtOf(disc)), denom).Simplify()
		x2 := DivOf(SubOf(NegOf(b), SqrtOf(disc)), denom).Simplify()
		return &Solutions{Roots: []Expr{x1, x2}}
	}
	if an.IsZero() {
		return solveLinear(b, c)
	}
	af, bf, cf := an.Float64(), bn.Float64(), cn.Float64()
	disc := bf*bf - 4*af*cf
	if disc < -zeroTol {
		re := (0 - bf) / (2 * af) // avoids -0 when bf is zero
		im := math.Sqrt(-disc) / (2 * af)
		return &Solutions{Roots: []Expr{C(re, im), C(re, -im)}}
	}
	if math.Abs(disc) <= zeroTol {
		r := NFloat(-bf / (2 * af))
		return &Solutions{Roots: []Expr{r, r}}
	}

	// Exact roots when the discriminant is a perfect square over the
	// rationals; float roots otherwise.
	discRat := numAdd(numMul(bn, bn), numMul(N(-4), numMul(an, cn)))
	if sq, exact := ratSqrt(discRat); exact {
		twoA := numMul(N(2), an)
		x1 := numDiv(numAdd(numNeg(bn), sq), twoA)
		x2 := numDiv(numSub(numNeg(bn), sq), twoA)
		return &Solutions{Roots: []Expr{x1, x2}}
	}
	sq := math.Sqrt(disc)
	return &Solutions{Roots: []Expr{
		NFloat((-bf + sq) / (2 * af)),
		NFloat((-bf - sq) / (2 * af)),
	}}
}

// ratSqrt returns the exact rational square root when one exists.
func ratSqrt(n *Num) (*Num, bool) {
	if n.IsNegative() {
		return nil, false
	}
	f := n.Float64()
	root := math.Sqrt(f)
	cand := NFloat(root)
	ri := math.Round(root)
	if math.Abs(root-ri) < zeroTol {
		cand = N(int64(ri))
	}
	if numCmp(numMul(cand, cand), n) == 0 {
		return cand, true
	}
	return nil, false
}

// solveCubic applies Cardano's method to numeric coefficients. All three
// roots come back: three reals for a positive discriminant, repeated roots
// at zero, and one real plus a conjugate pair otherwise.
func solveCubic(p *Polynomial) (*Solutions, error) {
	fc, ok := p.FloatCoeffs()
	if !ok {
		return nil, fmt.Errorf("%w: cubic in %s needs numeric coefficients", ErrUnsupportedForm, p.Variable)
	}
	df, cf, bf, af := fc[0], fc[1], fc[2], fc[3]
	if af == 0 {
		return solveQuadratic(NFloat(bf), NFloat(cf), NFloat(df)), nil
	}

	// Depressed form t^3 + pt + q with x = t - offset.
	pp := (3*af*cf - bf*bf) / (3 * af * af)
	q := (2*bf*bf*bf - 9*af*bf*cf + 27*af*af*df) / (27 * af * af * af)
	offset := bf / (3 * af)
	disc := -(4*pp*pp*pp + 27*q*q)

	switch {
	case disc > zeroTol:
		m := 2 * math.Sqrt(-pp/3)
		theta := math.Acos(3*q/(pp*m)) / 3
		roots := make([]Expr, 3)
		for k := 0; k < 3; k++ {
			roots[k] = NFloat(m*math.Cos(theta-2*math.Pi*float64(k)/3) - offset)
		}
		return &Solutions{Roots: roots}, nil
	case math.Abs(disc) <= zeroTol:
		if math.Abs(q) <= zeroTol {
			r := NFloat(-offset)
			return &Solutions{Roots: []Expr{r, r, r}}, nil
		}
		double := NFloat(-3*q/(2*pp) - offset)
		return &Solutions{Roots: []Expr{NFloat(3*q/pp - offset), double, double}}, nil
	default:
		a3 := math.Cbrt(-q/2 + math.Sqrt(q*q/4+pp*pp*pp/27))
		b3 := 0.0
		if a3 != 0 {
			b3 = -pp / (3 * a3)
		}
		re := -a3/2 - b3/2 - offset
		im := math.Sqrt(3) / 2 * math.Abs(a3-b3)
		return &Solutions{Roots: []Expr{
			NFloat(a3 + b3 - offset),
			C(re, im),
			C(re, -im),
		}}, nil
	}
}

// ============================================================
// Single-occurrence isolation
// ============================================================

// solveByIsolation peels the residual down to the bare variable, inverting
// one node per step. It only applies when the variable occurs exactly once.
func solveByIsolation(residual Expr, name string) (*Solutions, error) {
	if occurrences(residual, name) != 1 {
		return nil, fmt.Errorf("%w: %s occurs more than once in %s", ErrUnsupportedForm, name, residual.String())
	}
	current := residual
	target := Expr(N(0))
	for {
		if sym, ok := current.(*Sym); ok && sym.name == name {
			return &Solutions{Roots: []Expr{target.Simplify()}}, nil
		}
		next, nextTarget, err := peel(current, target, name)
		if err != nil {
			return nil, err
		}
		current, target = next, nextTarget
	}
}

// peel inverts the outermost node of current around the variable.
func peel(current, target Expr, name string) (Expr, Expr, error) {
	switch v := current.(type) {
	case *Add:
		var keep Expr
		rest := []Expr{target}
		for _, t := range v.terms {
			if DependsOn(t, name) {
				keep = t
			} else {
				rest = append(rest, NegOf(t))
			}
		}
		return keep, AddOf(rest...), nil
	case *Mul:
		var keep Expr
		rest := []Expr{target}
		for _, f := range v.factors {
			if DependsOn(f, name) {
				keep = f
			} else {
				rest = append(rest, PowOf(f, N(-1)))
			}
		}
		return keep, MulOf(rest...), nil
	case *Pow:
		if DependsOn(v.base, name) {
			if n, ok := v.exp.(*Num); ok && !n.IsZero() {
				return v.base, PowOf(target, numRecip(n)), nil
			}
			if !DependsOn(v.exp, name) {
				return v.base, PowOf(target, PowOf(v.exp, N(-1))), nil
			}
			return nil, nil, fmt.Errorf("%w: variable in both base and exponent of %s", ErrUnsupportedForm, current.String())
		}
		// a^f(x) = t  =>  f(x) = ln t / ln a
		return v.exp, DivOf(LnOf(target), LnOf(v.base)), nil
	case *Func:
		inv, err := invertFunc(v.name, target)
		if err != nil {
			return nil, nil, err
		}
		return v.arg, inv, nil
	}
	return nil, nil, fmt.Errorf("%w: cannot invert %s", ErrUnsupportedForm, current.String())
}

// invertFunc maps f(u) = t to u for the invertible function table.
func invertFunc(name string, t Expr) (Expr, error) {
	switch name {
	case "sin":
		return AsinOf(t), nil
	case "cos":
		return AcosOf(t), nil
	case "tan":
		return AtanOf(t), nil
	case "asin":
		return SinOf(t), nil
	case "acos":
		return CosOf(t), nil
	case "atan":
		return TanOf(t), nil
	case "exp":
		return LnOf(t), nil
	case "ln":
		return ExpOf(t), nil
	case "sec":
		return AcosOf(DivOf(N(1), t)), nil
	case "csc":
		return AsinOf(DivOf(N(1), t)), nil
	case "cot":
		return AtanOf(DivOf(N(1), t)), nil
	}
	return nil, fmt.Errorf("%w: %s is not invertible", ErrUnsupportedForm, name)
}

// occurrences counts free appearances of name in the tree.
func occurrences(e Expr, name string) int {
	switch v := e.(type) {
	case *Sym:
		if v.name == name {
			return 1
		}
	case *Add:
		total := 0
		for _, t := range v.terms {
			total += occurrences(t, name)
		}
		return total
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += occurrences(f, name)
		}
		return total
	case *Pow:
		return occurrences(v.base, name) + occurrences(v.exp, name)
	case *Mod:
		return occurrences(v.a, name) + occurrences(v.b, name)
	case *Func:
		return occurrences(v.arg, name)
	}
	return 0
}
