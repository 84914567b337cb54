package symgo

import (
	"math/big"

	"golang.org/x/exp/slices"
)

// The simplifier is a bottom-up rewrite: each variant's Simplify reduces its
// operands first, then applies local identities. No rule ever fails; a node
// with no applicable rule is returned unchanged, which makes the whole pass
// total and idempotent.

func (n *Num) Simplify() Expr { return n }

// ============================================================
// Add: flatten, fold numerics, collect like terms
// ============================================================

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type collected struct {
		rest  Expr
		coeff *Num
	}
	numAccum := N(0)
	var groups []collected
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := splitCoefficient(t)
		idx := slices.IndexFunc(groups, func(g collected) bool { return g.rest.Equal(rest) })
		if idx >= 0 {
			groups[idx].coeff = numAdd(groups[idx].coeff, coeff)
		} else {
			groups = append(groups, collected{rest: rest, coeff: coeff})
		}
	}

	result := make([]Expr, 0, len(groups)+1)
	for _, g := range groups {
		switch {
		case g.coeff.IsZero():
			// dropped
		case g.coeff.IsOne():
			result = append(result, g.rest)
		default:
			result = append(result, remul(g.coeff, g.rest))
		}
	}
	slices.SortFunc(result, Compare)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}

	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoefficient separates a term into its numeric coefficient and the
// remaining symbolic part. Pure numbers split as (n, 1).
func splitCoefficient(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, N(1)
	case *Mul:
		coeff := N(1)
		rest := make([]Expr, 0, len(v.factors))
		for _, f := range v.factors {
			if n, ok := f.(*Num); ok {
				coeff = numMul(coeff, n)
			} else {
				rest = append(rest, f)
			}
		}
		switch len(rest) {
		case 0:
			return coeff, N(1)
		case 1:
			return coeff, rest[0]
		}
		return coeff, &Mul{factors: rest}
	}
	return N(1), e
}

// remul attaches a numeric coefficient to an already-simplified symbolic
// part without re-running the full product pass.
func remul(coeff *Num, rest Expr) Expr {
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{coeff}, m.factors...)}
	}
	return &Mul{factors: []Expr{coeff, rest}}
}

// ============================================================
// Mul: flatten, fold numerics, combine exponents over equal bases
// ============================================================

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := N(1)
	type based struct {
		base Expr
		exp  Expr
	}
	var groups []based
	combined := false
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := Expr(f), Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		idx := slices.IndexFunc(groups, func(g based) bool { return g.base.Equal(base) })
		if idx >= 0 {
			groups[idx].exp = AddOf(groups[idx].exp, exp)
			combined = true
		} else {
			groups = append(groups, based{base: base, exp: exp})
		}
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(groups))
	for _, g := range groups {
		f := PowOf(g.base, g.exp)
		if isNumEqual(f, 1) {
			continue
		}
		others = append(others, f)
	}
	if combined {
		// Exponent cancellation can resurface numbers or nested products
		// (x*x^-1 -> 1, ((x*y)^2)*(x*y)^-1 -> x*y); one more pass settles it.
		return MulOf(append([]Expr{coeff}, others...)...)
	}

	if len(others) == 0 {
		return coeff
	}
	slices.SortFunc(others, Compare)
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// ============================================================
// Pow
// ============================================================

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	// The zero-base check runs before the zero-exponent fold so 0^0 never
	// collapses to 1; evaluation reports it as a domain error.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 && (en.IsZero() || en.IsNegative()) {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}

	if c, ok := (&Pow{base: base, exp: exp}).Const(); ok {
		return c
	}

	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}

	// Integer powers distribute over products so that exponent combining
	// can cancel across factors, e.g. (2x)^-1 against x.
	if m, ok := base.(*Mul); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			factors := make([]Expr, len(m.factors))
			for i, f := range m.factors {
				factors[i] = PowOf(f, en)
			}
			return MulOf(factors...).Simplify()
		}
	}
	return &Pow{base: base, exp: exp}
}

// ============================================================
// Mod
// ============================================================

func (m *Mod) Simplify() Expr {
	a := m.a.Simplify()
	b := m.b.Simplify()
	out := &Mod{a: a, b: b}
	if c, ok := out.Const(); ok {
		return c
	}
	if an, ok := a.(*Num); ok && an.IsZero() {
		return N(0)
	}
	if isNumEqual(b, 1) {
		if an, ok := a.(*Num); ok && an.IsInteger() {
			return N(0)
		}
	}
	return out
}

// ============================================================
// Func
// ============================================================

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if folded, ok2 := foldFunc(f.name, n); ok2 {
			return folded
		}
	}
	switch f.name {
	case "sin", "tan", "sinh", "tanh", "asin", "atan":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos", "cosh", "sec":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if coeff, rest := splitCoefficient(arg); coeff.IsNegative() {
			return AbsOf(remul(numNeg(coeff), rest).Simplify())
		}
	}
	return &Func{name: f.name, arg: arg}
}

// foldFunc evaluates a function of an exact rational argument only when the
// result is itself exact. Irrational values like sin(1) or ln(2) stay
// symbolic so rewrites built on them cancel structurally; Eval produces
// their float value on demand.
func foldFunc(name string, n *Num) (Expr, bool) {
	switch name {
	case "sin", "tan", "sinh", "tanh", "asin", "atan":
		if n.IsZero() {
			return N(0), true
		}
	case "cos", "cosh", "sec":
		if n.IsZero() {
			return N(1), true
		}
	case "exp":
		if n.IsZero() {
			return N(1), true
		}
	case "ln":
		if n.IsOne() {
			return N(0), true
		}
	case "acos":
		if n.IsOne() {
			return N(0), true
		}
	case "abs":
		return numAbs(n), true
	case "floor":
		return numFloor(n), true
	case "ceil":
		return numNeg(numFloor(numNeg(n))), true
	case "sign":
		switch {
		case n.IsPositive():
			return N(1), true
		case n.IsNegative():
			return N(-1), true
		default:
			return N(0), true
		}
	}
	return nil, false
}

// numFloor rounds an exact rational toward negative infinity.
func numFloor(n *Num) *Num {
	q := new(big.Int).Div(n.val.Num(), n.val.Denom())
	return &Num{val: new(big.Rat).SetInt(q)}
}

// ============================================================
// Trig sub-pass
// ============================================================

// TrigSimplify applies trigonometric identities on top of the plain
// simplifier: sin²+cos²=1 where both terms are present, and power reduction
// of sin²/cos² stays available to the integrator via powerReduce.
func TrigSimplify(e Expr) Expr {
	return trigWalk(e.Simplify()).Simplify()
}

func trigWalk(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = trigWalk(t)
		}
		return pythagorean(AddOf(terms...))
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = trigWalk(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(trigWalk(v.base), v.exp)
	case *Mod:
		return ModOf(trigWalk(v.a), trigWalk(v.b))
	case *Func:
		return funcOf(v.name, trigWalk(v.arg)).Simplify()
	}
	return e
}

// pythagorean collapses matching c*sin²(u) + c*cos²(u) term pairs to c.
// Matching is structural on u via Compare-canonical trees, never on the
// printed form.
func pythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		fn    string
		arg   Expr
		coeff *Num
		idx   int
	}
	var found []trigTerm
	for idx, t := range add.terms {
		coeff, inner := splitCoefficient(t)
		p, ok2 := inner.(*Pow)
		if !ok2 || !isNumEqual(p.exp, 2) {
			continue
		}
		fn, ok3 := p.base.(*Func)
		if !ok3 || (fn.name != "sin" && fn.name != "cos") {
			continue
		}
		found = append(found, trigTerm{fn: fn.name, arg: fn.arg, coeff: coeff, idx: idx})
	}
	for i := 0; i < len(found); i++ {
		for j := i + 1; j < len(found); j++ {
			ti, tj := found[i], found[j]
			if ti.fn == tj.fn || !ti.arg.Equal(tj.arg) || numCmp(ti.coeff, tj.coeff) != 0 {
				continue
			}
			rest := make([]Expr, 0, len(add.terms)-1)
			for idx, t := range add.terms {
				if idx != ti.idx && idx != tj.idx {
					rest = append(rest, t)
				}
			}
			rest = append(rest, ti.coeff)
			return AddOf(rest...).Simplify()
		}
	}
	return e
}

// powerReduce rewrites sin²(u) and cos²(u) via the half-angle identities.
// Returns the input unchanged when it is not such a power.
func powerReduce(e Expr) (Expr, bool) {
	p, ok := e.(*Pow)
	if !ok || !isNumEqual(p.exp, 2) {
		return e, false
	}
	fn, ok := p.base.(*Func)
	if !ok {
		return e, false
	}
	double := MulOf(N(2), fn.arg)
	switch fn.name {
	case "sin":
		return MulOf(F(1, 2), SubOf(N(1), CosOf(double))), true
	case "cos":
		return MulOf(F(1, 2), AddOf(N(1), CosOf(double))), true
	}
	return e, false
}

// DeepSimplify alternates the plain and trig passes until the tree stops
// changing, with a fixed iteration cap.
func DeepSimplify(e Expr) Expr {
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		next := TrigSimplify(curr).Simplify()
		if next.Equal(curr) {
			break
		}
		curr = next
	}
	return curr
}

// ============================================================
// Expansion
// ============================================================

// expandPowerCap bounds integer-power unrolling; larger exponents stay as
// powers.
const expandPowerCap = 10

// Expand distributes products over sums and unrolls small integer powers,
// then simplifies.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

// expandExpr builds the distributed form as raw Add/Mul nodes. Distribution
// works on flat factor lists and never goes through the canonicalizing
// constructors: MulOf would re-fold x*x into the very power being unrolled.
// The single Simplify in Expand canonicalizes the finished sum.
func expandExpr(e Expr) Expr {
	products := expandProducts(e)
	terms := make([]Expr, len(products))
	for i, fs := range products {
		switch len(fs) {
		case 0:
			terms[i] = N(1)
		case 1:
			terms[i] = fs[0]
		default:
			terms[i] = &Mul{factors: fs}
		}
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &Add{terms: terms}
}

// expandProducts returns e as a sum of flat factor lists.
func expandProducts(e Expr) [][]Expr {
	switch v := e.(type) {
	case *Add:
		out := make([][]Expr, 0, len(v.terms))
		for _, t := range v.terms {
			out = append(out, expandProducts(t)...)
		}
		return out
	case *Mul:
		acc := [][]Expr{nil}
		for _, f := range v.factors {
			acc = crossProducts(acc, expandProducts(f))
		}
		return acc
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			k := n.val.Num().Int64()
			if k >= 0 && k <= expandPowerCap {
				base := expandProducts(v.base)
				acc := [][]Expr{nil}
				for i := int64(0); i < k; i++ {
					acc = crossProducts(acc, base)
				}
				return acc
			}
		}
		return [][]Expr{{&Pow{base: expandExpr(v.base), exp: expandExpr(v.exp)}}}
	}
	return [][]Expr{{e}}
}

// crossProducts concatenates every factor list in as with every one in bs.
func crossProducts(as, bs [][]Expr) [][]Expr {
	out := make([][]Expr, 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			t := make([]Expr, 0, len(a)+len(b))
			t = append(append(t, a...), b...)
			out = append(out, t)
		}
	}
	return out
}

// ============================================================
// Collect and Cancel
// ============================================================

// Collect groups terms by powers of the named variable, highest degree
// first.
func Collect(e Expr, name string) Expr {
	coeffs := PolyCoeffs(e, name)
	if len(coeffs) == 0 {
		return N(0)
	}
	degrees := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degrees = append(degrees, d)
	}
	slices.Sort(degrees)
	slices.Reverse(degrees)
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		c := coeffs[d]
		if cn, ok := c.(*Num); ok && cn.IsZero() {
			continue
		}
		switch d {
		case 0:
			terms = append(terms, c)
		case 1:
			terms = append(terms, MulOf(c, S(name)))
		default:
			terms = append(terms, MulOf(c, PowOf(S(name), N(int64(d)))))
		}
	}
	if len(terms) == 0 {
		return N(0)
	}
	return AddOf(terms...).Simplify()
}

// Cancel simplifies the quotient num/denom, dividing out exactly-equal
// symbolic parts and folding numeric ones.
func Cancel(num, denom Expr) Expr {
	num = num.Simplify()
	denom = denom.Simplify()
	if nn, ok := num.Const(); ok {
		if dn, ok2 := denom.Const(); ok2 && !dn.IsZero() {
			return numDiv(nn, dn)
		}
	}
	if dn, ok := denom.(*Num); ok {
		if dn.IsOne() {
			return num
		}
		if dn.IsNegOne() {
			return NegOf(num).Simplify()
		}
	}
	numCoeff, numRest := splitCoefficient(num)
	denCoeff, denRest := splitCoefficient(denom)
	if numRest.Equal(denRest) && !denCoeff.IsZero() {
		return numDiv(numCoeff, denCoeff)
	}
	if vars := sharedVariable(num, denom); vars != "" {
		if rf, err := RationalFromExpr(num, denom, vars); err == nil {
			if reduced := rf.Reduce(); reduced != rf {
				return reduced.ToExpr().Simplify()
			}
		}
	}
	return DivOf(num, denom).Simplify()
}

// sharedVariable picks the sole variable common to both trees, or "" when
// the choice is ambiguous or empty.
func sharedVariable(a, b Expr) string {
	av, bv := VarNames(a), VarNames(b)
	common := []string{}
	for _, n := range av {
		if slices.Contains(bv, n) {
			common = append(common, n)
		}
	}
	if len(common) == 1 {
		return common[0]
	}
	return ""
}
