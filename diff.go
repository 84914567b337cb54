package symgo

// Differentiation is a structural recursion over the variant set. Each rule
// builds its result with the smart constructors, which fold locally, but no
// rule runs a full simplification pass: repeated differentiation (Taylor
// series, higher derivatives) stays cheap and callers compose with Simplify
// when they want the reduced form.

func (n *Num) Diff(string) Expr { return N(0) }

func (s *Sym) Diff(name string) Expr {
	if s.name == name {
		return N(1)
	}
	return N(0)
}

func (a *Add) Diff(name string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(name)
	}
	return AddOf(dTerms...)
}

func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(name)
		rest := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				rest = append(rest, fj)
			}
		}
		if len(rest) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, rest...)...)
		}
	}
	return AddOf(terms...)
}

func (p *Pow) Diff(name string) Expr {
	du := p.base.Diff(name)
	dv := p.exp.Diff(name)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		// Power rule with the numeric-exponent chain factor.
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if _, baseIsNum := p.base.(*Num); baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	// General case via the exponential form b^e = exp(e*ln b).
	logTerm := MulOf(dv, LnOf(p.base))
	ratioTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, ratioTerm))
}

func (m *Mod) Diff(name string) Expr {
	// d(a mod b) = a' - b'*floor(a/b) almost everywhere.
	da := m.a.Diff(name)
	db := m.b.Diff(name)
	return SubOf(da, MulOf(db, FloorOf(DivOf(m.a, m.b))))
}

func (f *Func) Diff(name string) Expr {
	du := f.arg.Diff(name)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = NegOf(SinOf(f.arg))
	case "tan":
		outer = PowOf(SecOf(f.arg), N(2))
	case "sec":
		outer = MulOf(SecOf(f.arg), TanOf(f.arg))
	case "csc":
		outer = NegOf(MulOf(CscOf(f.arg), CotOf(f.arg)))
	case "cot":
		outer = NegOf(PowOf(CscOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(SubOf(N(1), PowOf(f.arg, N(2))), F(-1, 2))
	case "acos":
		outer = NegOf(PowOf(SubOf(N(1), PowOf(f.arg, N(2))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = SubOf(N(1), PowOf(TanhOf(f.arg), N(2)))
	case "abs":
		outer = SignOf(f.arg)
	case "floor", "ceil", "sign":
		// Piecewise constant almost everywhere.
		return N(0)
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

// ============================================================
// Top-level derivatives
// ============================================================

// Derivative differentiates and simplifies.
func Derivative(e Expr, name string) Expr {
	return e.Diff(name).Simplify()
}

// DerivativeN applies Derivative n times.
func DerivativeN(e Expr, name string, n int) Expr {
	result := e
	for i := 0; i < n; i++ {
		result = Derivative(result, name)
	}
	return result
}

// Gradient returns the partial derivatives of e with respect to each name.
func Gradient(e Expr, names []string) []Expr {
	out := make([]Expr, len(names))
	for i, v := range names {
		out[i] = Derivative(e, v)
	}
	return out
}

// ============================================================
// Taylor series
// ============================================================

// TaylorSeries expands e around name = a up to the given order.
func TaylorSeries(e Expr, name string, a Expr, order int) Expr {
	var terms []Expr
	current := e
	factorial := N(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			factorial = numMul(factorial, N(int64(k)))
		}
		coeff := MulOf(current.Subst(name, a), numRecip(factorial)).Simplify()
		if cn, ok := coeff.(*Num); ok && cn.IsZero() {
			current = Derivative(current, name)
			continue
		}
		shift := SubOf(S(name), a)
		switch k {
		case 0:
			terms = append(terms, coeff)
		case 1:
			terms = append(terms, MulOf(coeff, shift))
		default:
			terms = append(terms, MulOf(coeff, PowOf(shift, N(int64(k)))))
		}
		current = Derivative(current, name)
	}
	return AddOf(terms...).Simplify()
}

// MaclaurinSeries is the Taylor expansion around zero.
func MaclaurinSeries(e Expr, name string, order int) Expr {
	return TaylorSeries(e, name, N(0), order)
}
