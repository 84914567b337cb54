package symgo

import (
	"errors"
	"fmt"
)

// The integrator is a fixed chain of pattern strategies tried in order.
// Each strategy either claims the expression and produces an antiderivative
// or declines, and strategies re-enter the chain for their sub-problems.
// Recursion depth is capped so mutually-feeding rules (parts in particular)
// cannot loop.

const maxIntegrateDepth = 32

// Integrate returns an antiderivative of e with respect to name, without
// the arbitrary constant. ErrNoIntegrationRule reports an expression no
// strategy claims; ErrDepthExceeded reports runaway rule recursion.
func Integrate(e Expr, name string) (Expr, error) {
	in := &integrator{variable: name}
	res, err := in.integrate(e)
	if err != nil {
		return nil, err
	}
	return res.Simplify(), nil
}

type integrator struct {
	variable string
	depth    int
}

type strategy func(Expr) (Expr, bool, error)

func (in *integrator) integrate(e Expr) (Expr, error) {
	if in.depth >= maxIntegrateDepth {
		return nil, fmt.Errorf("%w: integration recursion while handling %s", ErrDepthExceeded, e.String())
	}
	in.depth++
	defer func() { in.depth-- }()

	e = e.Simplify()
	if !DependsOn(e, in.variable) {
		return MulOf(e, S(in.variable)), nil
	}
	if sym, ok := e.(*Sym); ok && sym.name == in.variable {
		return MulOf(F(1, 2), PowOf(S(in.variable), N(2))), nil
	}

	for _, strat := range []strategy{
		in.powerRule,
		in.basicTrig,
		in.exponential,
		in.constantMultiple,
		in.uSubstitution,
		in.byParts,
		in.inverseTrig,
		in.sumRule,
	} {
		res, ok, err := strat(e)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %s with respect to %s", ErrNoIntegrationRule, e.String(), in.variable)
}

// powerRule handles x^n for numeric n, including the n = -1 logarithm case.
func (in *integrator) powerRule(e Expr) (Expr, bool, error) {
	p, ok := e.(*Pow)
	if !ok {
		return nil, false, nil
	}
	sym, ok := p.base.(*Sym)
	if !ok || sym.name != in.variable {
		return nil, false, nil
	}
	n, ok := p.exp.(*Num)
	if !ok {
		return nil, false, nil
	}
	if n.IsNegOne() {
		return LnOf(AbsOf(S(in.variable))), true, nil
	}
	next := numAdd(n, N(1))
	return MulOf(numRecip(next), PowOf(S(in.variable), next)), true, nil
}

// basicTrig covers the direct trig antiderivatives of the bare variable,
// squared sine and cosine via power reduction, and the sec*tan / csc*cot
// product forms.
func (in *integrator) basicTrig(e Expr) (Expr, bool, error) {
	x := S(in.variable)

	if f, ok := e.(*Func); ok {
		if sym, ok2 := f.arg.(*Sym); !ok2 || sym.name != in.variable {
			return nil, false, nil
		}
		switch f.name {
		case "sin":
			return NegOf(CosOf(x)), true, nil
		case "cos":
			return SinOf(x), true, nil
		case "tan":
			return NegOf(LnOf(AbsOf(CosOf(x)))), true, nil
		case "cot":
			return LnOf(AbsOf(SinOf(x))), true, nil
		case "sec":
			return LnOf(AbsOf(AddOf(SecOf(x), TanOf(x)))), true, nil
		case "csc":
			return LnOf(AbsOf(SubOf(CscOf(x), CotOf(x)))), true, nil
		}
		return nil, false, nil
	}

	if p, ok := e.(*Pow); ok {
		f, ok2 := p.base.(*Func)
		if !ok2 || !isNumEqual(p.exp, 2) {
			return nil, false, nil
		}
		if sym, ok3 := f.arg.(*Sym); !ok3 || sym.name != in.variable {
			return nil, false, nil
		}
		switch f.name {
		case "sin", "cos":
			reduced, changed := powerReduce(p)
			if !changed {
				return nil, false, nil
			}
			res, err := in.integrate(reduced)
			if err != nil {
				return nil, false, err
			}
			return res, true, nil
		case "sec":
			return TanOf(x), true, nil
		case "csc":
			return NegOf(CotOf(x)), true, nil
		}
		return nil, false, nil
	}

	if m, ok := e.(*Mul); ok && len(m.factors) == 2 {
		names := map[string]bool{}
		for _, f := range m.factors {
			fn, ok2 := f.(*Func)
			if !ok2 {
				return nil, false, nil
			}
			if sym, ok3 := fn.arg.(*Sym); !ok3 || sym.name != in.variable {
				return nil, false, nil
			}
			names[fn.name] = true
		}
		if names["sec"] && names["tan"] {
			return SecOf(x), true, nil
		}
		if names["csc"] && names["cot"] {
			return NegOf(CscOf(x)), true, nil
		}
	}
	return nil, false, nil
}

// exponential handles e^x and a^x for positive numeric bases.
func (in *integrator) exponential(e Expr) (Expr, bool, error) {
	if f, ok := e.(*Func); ok && f.name == "exp" {
		if sym, ok2 := f.arg.(*Sym); ok2 && sym.name == in.variable {
			return ExpOf(S(in.variable)), true, nil
		}
		return nil, false, nil
	}
	if p, ok := e.(*Pow); ok {
		base, ok2 := p.base.(*Num)
		if !ok2 || !base.IsPositive() || base.IsOne() {
			return nil, false, nil
		}
		if sym, ok3 := p.exp.(*Sym); ok3 && sym.name == in.variable {
			return DivOf(PowOf(base, S(in.variable)), LnOf(base)), true, nil
		}
	}
	return nil, false, nil
}

// constantMultiple hoists factors free of the variable out of a product.
func (in *integrator) constantMultiple(e Expr) (Expr, bool, error) {
	m, ok := e.(*Mul)
	if !ok {
		return nil, false, nil
	}
	free := []Expr{}
	dep := []Expr{}
	for _, f := range m.factors {
		if DependsOn(f, in.variable) {
			dep = append(dep, f)
		} else {
			free = append(free, f)
		}
	}
	if len(free) == 0 || len(dep) == 0 {
		return nil, false, nil
	}
	inner, err := in.integrate(MulOf(dep...))
	if err != nil {
		if isChainMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return MulOf(MulOf(free...), inner).Simplify(), true, nil
}

// sumRule integrates termwise. One unintegrable term fails the whole sum;
// there is no partial answer.
func (in *integrator) sumRule(e Expr) (Expr, bool, error) {
	a, ok := e.(*Add)
	if !ok {
		return nil, false, nil
	}
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		res, err := in.integrate(t)
		if err != nil {
			if isChainMiss(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		out[i] = res
	}
	return AddOf(out...).Simplify(), true, nil
}

// uSubstitution looks for g(u)*u' shapes: it divides the integrand by the
// candidate's derivative and, when the quotient depends only on u, solves
// the rewritten problem in a fresh variable. The u'/u logarithm case falls
// out of the power rule after rewriting.
func (in *integrator) uSubstitution(e Expr) (Expr, bool, error) {
	tmp := freshSymbolName(e, in.variable)
	for _, u := range substitutionCandidates(e, in.variable) {
		du := Derivative(u, in.variable)
		if n, ok := du.(*Num); ok && n.IsZero() {
			continue
		}
		q := Cancel(e, du)
		g := replaceSubtree(q, u, S(tmp)).Simplify()
		if DependsOn(g, in.variable) {
			continue
		}
		sub := &integrator{variable: tmp, depth: in.depth}
		res, err := sub.integrate(g)
		if err != nil {
			if isChainMiss(err) {
				continue
			}
			return nil, false, err
		}
		return res.Subst(tmp, u).Simplify(), true, nil
	}
	return nil, false, nil
}

// byParts applies integration by parts, picking u by the ILATE preference
// order and integrating what remains as dv. A lone logarithm or inverse
// trig function takes dv = 1.
func (in *integrator) byParts(e Expr) (Expr, bool, error) {
	var u, dv Expr
	switch v := e.(type) {
	case *Func:
		if ilateRank(v, in.variable) > 2 {
			return nil, false, nil
		}
		u, dv = v, N(1)
	case *Mul:
		bestIdx := -1
		bestRank := 5
		for i, f := range v.factors {
			if !DependsOn(f, in.variable) {
				continue
			}
			if r := ilateRank(f, in.variable); r < bestRank {
				bestRank, bestIdx = r, i
			}
		}
		if bestIdx < 0 || bestRank > 3 {
			return nil, false, nil
		}
		u = v.factors[bestIdx]
		rest := make([]Expr, 0, len(v.factors)-1)
		for i, f := range v.factors {
			if i != bestIdx {
				rest = append(rest, f)
			}
		}
		dv = MulOf(rest...).Simplify()
		if !DependsOn(dv, in.variable) {
			return nil, false, nil
		}
	default:
		return nil, false, nil
	}

	vInt, err := in.integrate(dv)
	if err != nil {
		if isChainMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	second, err := in.integrate(MulOf(vInt, Derivative(u, in.variable)).Simplify())
	if err != nil {
		if isChainMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return SubOf(MulOf(u, vInt), second).Simplify(), true, nil
}

// ilateRank orders integration-by-parts candidates: inverse trig, then
// logarithms, algebraic terms, trig, exponentials.
func ilateRank(e Expr, name string) int {
	switch v := e.(type) {
	case *Func:
		switch v.name {
		case "asin", "acos", "atan":
			return 0
		case "ln":
			return 1
		case "sin", "cos", "tan", "sec", "csc", "cot":
			return 3
		case "exp", "sinh", "cosh", "tanh":
			return 4
		}
		return 5
	case *Sym:
		return 2
	case *Pow:
		if IsPolynomial(v, name, true) {
			return 2
		}
		if n, ok := v.base.(*Num); ok && n.IsPositive() {
			return 4
		}
		return 5
	case *Num, *Cmplx:
		return 2
	}
	if IsPolynomial(e, name, true) {
		return 2
	}
	return 5
}

// inverseTrig matches the arctangent form c/(x^2+a^2) and the arcsine form
// c/sqrt(a^2-x^2), with a^2 allowed to stay symbolic.
func (in *integrator) inverseTrig(e Expr) (Expr, bool, error) {
	coeff, powFactor := splitInversePow(e, in.variable)
	if powFactor == nil {
		return nil, false, nil
	}
	base, ok := powFactor.base.(*Add)
	if !ok {
		return nil, false, nil
	}
	coeffs := PolyCoeffs(base, in.variable)
	aSquared, lead := coeffs[0], coeffs[2]
	if aSquared == nil || lead == nil || DependsOn(aSquared, in.variable) {
		return nil, false, nil
	}
	for d, c := range coeffs {
		if d == 0 || d == 2 {
			continue
		}
		if n, ok2 := c.(*Num); !ok2 || !n.IsZero() {
			return nil, false, nil
		}
	}
	x := S(in.variable)

	if isNumEqual(powFactor.exp, -1) {
		// c/(p*x^2 + a^2) with numeric p > 0.
		p, ok2 := lead.(*Num)
		if !ok2 || !p.IsPositive() {
			return nil, false, nil
		}
		a := SqrtOf(DivOf(aSquared, p)).Simplify()
		res := MulOf(coeff, numRecip(p), PowOf(a, N(-1)), AtanOf(DivOf(x, a)))
		return res.Simplify(), true, nil
	}

	// Exponent -1/2: c/sqrt(a^2 - x^2).
	if n, ok2 := powFactor.exp.(*Num); !ok2 || numCmp(n, F(-1, 2)) != 0 {
		return nil, false, nil
	}
	if ln, ok2 := lead.(*Num); !ok2 || !ln.IsNegOne() {
		return nil, false, nil
	}
	a := SqrtOf(aSquared).Simplify()
	return MulOf(coeff, AsinOf(DivOf(x, a))).Simplify(), true, nil
}

// splitInversePow factors e into a variable-free coefficient and a single
// negative power of a sum in the variable, or reports no match.
func splitInversePow(e Expr, name string) (Expr, *Pow) {
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	var match *Pow
	coeff := []Expr{}
	for _, f := range factors {
		p, ok := f.(*Pow)
		if ok {
			if n, ok2 := p.exp.(*Num); ok2 && n.IsNegative() && DependsOn(p.base, name) {
				if match != nil {
					return nil, nil
				}
				match = p
				continue
			}
		}
		if DependsOn(f, name) {
			return nil, nil
		}
		coeff = append(coeff, f)
	}
	if match == nil {
		return nil, nil
	}
	if len(coeff) == 0 {
		return N(1), match
	}
	return MulOf(coeff...), match
}

// substitutionCandidates collects the composite sub-expressions worth
// trying as u: function arguments, bases and exponents of powers, provided
// they depend on the variable and are more than the bare symbol.
func substitutionCandidates(e Expr, name string) []Expr {
	seen := []Expr{}
	var walk func(Expr)
	consider := func(u Expr) {
		if !DependsOn(u, name) {
			return
		}
		if s, ok := u.(*Sym); ok && s.name == name {
			return
		}
		for _, prev := range seen {
			if prev.Equal(u) {
				return
			}
		}
		seen = append(seen, u)
	}
	walk = func(x Expr) {
		switch v := x.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			consider(v.base)
			consider(v.exp)
			walk(v.base)
			walk(v.exp)
		case *Func:
			consider(v.arg)
			walk(v.arg)
		case *Mod:
			walk(v.a)
			walk(v.b)
		}
	}
	walk(e)
	return seen
}

// replaceSubtree rebuilds e with every subtree structurally equal to old
// replaced by repl.
func replaceSubtree(e, old, repl Expr) Expr {
	if e.Equal(old) {
		return repl
	}
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = replaceSubtree(t, old, repl)
		}
		return &Add{terms: terms}
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = replaceSubtree(f, old, repl)
		}
		return &Mul{factors: factors}
	case *Pow:
		return &Pow{base: replaceSubtree(v.base, old, repl), exp: replaceSubtree(v.exp, old, repl)}
	case *Mod:
		return &Mod{a: replaceSubtree(v.a, old, repl), b: replaceSubtree(v.b, old, repl)}
	case *Func:
		return &Func{name: v.name, arg: replaceSubtree(v.arg, old, repl)}
	}
	return e
}

// freshSymbolName picks a substitution variable not already free in e.
func freshSymbolName(e Expr, avoid string) string {
	used := map[string]bool{avoid: true}
	for _, n := range VarNames(e) {
		used[n] = true
	}
	for _, cand := range []string{"u", "w", "t"} {
		if !used[cand] {
			return cand
		}
	}
	i := 0
	for {
		cand := fmt.Sprintf("u%d", i)
		if !used[cand] {
			return cand
		}
		i++
	}
}

// isChainMiss distinguishes "no rule matched" from hard failures so outer
// strategies can decline instead of aborting the whole chain.
func isChainMiss(err error) bool {
	return errors.Is(err, ErrNoIntegrationRule)
}

// DefiniteIntegrate evaluates the integral of e over [a, b] numerically
// with 10-point Gauss-Legendre quadrature. It is the fallback when no
// symbolic antiderivative exists; non-evaluable points contribute zero.
func DefiniteIntegrate(e Expr, name string, a, b float64) float64 {
	nodes := []float64{
		-0.9739065285, -0.8650633667, -0.6794095683,
		-0.4333953941, -0.1488743390, 0.1488743390,
		0.4333953941, 0.6794095683, 0.8650633667, 0.9739065285,
	}
	weights := []float64{
		0.0666713443, 0.1494513492, 0.2190863625,
		0.2692667193, 0.2955242247, 0.2955242247,
		0.2692667193, 0.2190863625, 0.1494513492, 0.0666713443,
	}
	sum := 0.0
	mid := (a + b) / 2
	half := (b - a) / 2
	for i, t := range nodes {
		xi := mid + half*t
		if v, err := EvalReal(e, Bindings{name: complex(xi, 0)}); err == nil {
			sum += weights[i] * v
		}
	}
	return half * sum
}
