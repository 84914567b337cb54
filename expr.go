// Package symgo is a deterministic symbolic computation engine for Go.
//
// Expressions are immutable trees built from a closed set of node variants:
// exact rational literals, complex literals, variables, n-ary sums and
// products, powers, modulo, and named unary functions. Every operation
// (simplification, differentiation, integration, solving) is a pure function
// from input trees to output trees; no node is ever mutated after
// construction, so trees may be freely shared.
package symgo

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Expr is the closed interface over expression node variants. The concrete
// types are *Num, *Cmplx, *Sym, *Add, *Mul, *Pow, *Mod and *Func; every
// component of the engine switches exhaustively over that set.
type Expr interface {
	// Simplify returns an algebraically reduced, evaluation-equivalent tree.
	Simplify() Expr
	String() string
	LaTeX() string
	// Subst replaces every occurrence of the named variable with value,
	// structurally, without evaluating.
	Subst(name string, value Expr) Expr
	// Diff returns the derivative tree with respect to the named variable.
	// The result is not deep-simplified; compose with Simplify when a
	// reduced form is wanted.
	Diff(name string) Expr
	Equal(other Expr) bool
	// Const reports the node's exact rational value when the subtree is a
	// real constant.
	Const() (*Num, bool)
	eval(env Bindings) (complex128, error)
	toJSON() map[string]any
}

// Bindings maps variable names to numeric values for evaluation.
type Bindings map[string]complex128

// ============================================================
// Num — exact rational literal
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symgo: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

func (n *Num) Subst(string, Expr) Expr { return n }
func (n *Num) Const() (*Num, bool)     { return n, true }
func (n *Num) Equal(other Expr) bool   { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64        { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool            { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool             { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool          { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool         { return n.val.IsInt() }
func (n *Num) IsPositive() bool        { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool        { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat           { return new(big.Rat).Set(n.val) }

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]any {
	return map[string]any{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numCmp(a, b *Num) int  { return a.val.Cmp(b.val) }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symgo: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}

// ============================================================
// Cmplx — complex literal
// ============================================================

// Cmplx is a complex literal. The engine produces it for quadratic and cubic
// roots with negative discriminant; it participates in evaluation and
// structural comparison but no rewrite rule ever introduces one elsewhere.
type Cmplx struct{ re, im float64 }

func C(re, im float64) *Cmplx { return &Cmplx{re: re, im: im} }

func (c *Cmplx) Subst(string, Expr) Expr { return c }
func (c *Cmplx) Simplify() Expr          { return c }
func (c *Cmplx) Diff(string) Expr        { return N(0) }
func (c *Cmplx) Const() (*Num, bool) {
	if c.im == 0 {
		return NFloat(c.re), true
	}
	return nil, false
}
func (c *Cmplx) Complex() complex128 { return complex(c.re, c.im) }

func (c *Cmplx) Equal(other Expr) bool {
	o, ok := other.(*Cmplx)
	return ok && c.re == o.re && c.im == o.im
}

func (c *Cmplx) String() string {
	if c.im >= 0 {
		return fmt.Sprintf("%g + %gi", c.re, c.im)
	}
	return fmt.Sprintf("%g - %gi", c.re, -c.im)
}

func (c *Cmplx) LaTeX() string {
	if c.im >= 0 {
		return fmt.Sprintf("%g + %gi", c.re, c.im)
	}
	return fmt.Sprintf("%g - %gi", c.re, -c.im)
}

func (c *Cmplx) toJSON() map[string]any {
	return map[string]any{"type": "cmplx", "re": c.re, "im": c.im}
}

// ============================================================
// Sym — variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Const() (*Num, bool)   { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Name() string          { return s.name }

func (s *Sym) Subst(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Sym) toJSON() map[string]any {
	return map[string]any{"type": "sym", "name": s.name}
}

// ============================================================
// Add — n-ary sum
// ============================================================

type Add struct{ terms []Expr }

// AddOf builds the simplified sum of terms.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf builds a - b in the engine's normalized form a + (-1)*b.
func SubOf(a, b Expr) Expr { return AddOf(a, MulOf(N(-1), b)) }

func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Subst(name string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Subst(name, value)
	}
	return AddOf(out...)
}

func (a *Add) Const() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Const()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) toJSON() map[string]any {
	ts := make([]map[string]any, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]any{"type": "add", "terms": ts}
}

// ============================================================
// Mul — n-ary product
// ============================================================

type Mul struct{ factors []Expr }

// MulOf builds the simplified product of factors.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf builds a / b in the engine's normalized form a * b^(-1).
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// NegOf builds -a.
func NegOf(a Expr) Expr { return MulOf(N(-1), a) }

func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Subst(name string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Subst(name, value)
	}
	return MulOf(out...)
}

func (m *Mul) Const() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Const()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) toJSON() map[string]any {
	fs := make([]map[string]any, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]any{"type": "mul", "factors": fs}
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf builds the principal square root as base^(1/2).
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

// CbrtOf builds the cube root as base^(1/3).
func CbrtOf(arg Expr) Expr { return PowOf(arg, F(1, 3)) }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul, *Mod:
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul, *Mod:
		expStr = "(" + expStr + ")"
	default:
		if n, ok := p.exp.(*Num); ok && (!n.IsInteger() || n.IsNegative()) {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Mod:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Subst(name string, value Expr) Expr {
	return PowOf(p.base.Subst(name, value), p.exp.Subst(name, value))
}

func (p *Pow) Const() (*Num, bool) {
	b, ok := p.base.Const()
	if !ok {
		return nil, false
	}
	e, ok := p.exp.Const()
	if !ok || !e.IsInteger() {
		return nil, false
	}
	k := e.val.Num().Int64()
	if k < -64 || k > 64 {
		return nil, false
	}
	if k < 0 && b.IsZero() {
		return nil, false
	}
	acc := N(1)
	for i := int64(0); i < absInt64(k); i++ {
		acc = numMul(acc, b)
	}
	if k < 0 {
		return numRecip(acc), true
	}
	return acc, true
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) toJSON() map[string]any {
	return map[string]any{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

// ============================================================
// Mod — a mod b
// ============================================================

type Mod struct{ a, b Expr }

func ModOf(a, b Expr) Expr { return (&Mod{a: a, b: b}).Simplify() }

func (m *Mod) String() string { return m.a.String() + " mod " + m.b.String() }
func (m *Mod) LaTeX() string  { return m.a.LaTeX() + " \\bmod " + m.b.LaTeX() }

func (m *Mod) Subst(name string, value Expr) Expr {
	return ModOf(m.a.Subst(name, value), m.b.Subst(name, value))
}

func (m *Mod) Const() (*Num, bool) {
	a, okA := m.a.Const()
	b, okB := m.b.Const()
	if !okA || !okB || !a.IsInteger() || !b.IsInteger() || b.IsZero() {
		return nil, false
	}
	r := new(big.Int).Mod(a.val.Num(), b.val.Num())
	return &Num{val: new(big.Rat).SetInt(r)}, true
}

func (m *Mod) Equal(other Expr) bool {
	o, ok := other.(*Mod)
	return ok && m.a.Equal(o.a) && m.b.Equal(o.b)
}

func (m *Mod) toJSON() map[string]any {
	return map[string]any{"type": "mod", "a": m.a.toJSON(), "b": m.b.toJSON()}
}

// ============================================================
// Func — named unary function application
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func SecOf(arg Expr) Expr   { return funcOf("sec", arg).Simplify() }
func CscOf(arg Expr) Expr   { return funcOf("csc", arg).Simplify() }
func CotOf(arg Expr) Expr   { return funcOf("cot", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }

// LogOf builds log base b of arg as ln(arg)/ln(b).
func LogOf(base, arg Expr) Expr { return DivOf(LnOf(arg), LnOf(base)) }

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "sec", "csc", "cot", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Subst(name string, value Expr) Expr {
	return funcOf(f.name, f.arg.Subst(name, value)).Simplify()
}

func (f *Func) Const() (*Num, bool) { return nil, false }

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) toJSON() map[string]any {
	return map[string]any{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Canonical structural ordering
// ============================================================

// variantRank fixes the cross-variant order used by Compare.
func variantRank(e Expr) int {
	switch e.(type) {
	case *Num:
		return 0
	case *Cmplx:
		return 1
	case *Sym:
		return 2
	case *Func:
		return 3
	case *Pow:
		return 4
	case *Mul:
		return 5
	case *Add:
		return 6
	case *Mod:
		return 7
	}
	return 8
}

// Compare imposes a deterministic total order on expression trees: variant
// rank first, then a recursive comparison of operands. Commutative operands
// are kept sorted under this order, which is what makes "same expression up
// to a constant factor" checks structural rather than string-based.
func Compare(a, b Expr) int {
	if ra, rb := variantRank(a), variantRank(b); ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case *Num:
		return numCmp(x, b.(*Num))
	case *Cmplx:
		y := b.(*Cmplx)
		if x.re != y.re {
			if x.re < y.re {
				return -1
			}
			return 1
		}
		if x.im != y.im {
			if x.im < y.im {
				return -1
			}
			return 1
		}
		return 0
	case *Sym:
		return strings.Compare(x.name, b.(*Sym).name)
	case *Func:
		y := b.(*Func)
		if c := strings.Compare(x.name, y.name); c != 0 {
			return c
		}
		return Compare(x.arg, y.arg)
	case *Pow:
		y := b.(*Pow)
		if c := Compare(x.base, y.base); c != 0 {
			return c
		}
		return Compare(x.exp, y.exp)
	case *Mul:
		return compareLists(x.factors, b.(*Mul).factors)
	case *Add:
		return compareLists(x.terms, b.(*Add).terms)
	case *Mod:
		y := b.(*Mod)
		if c := Compare(x.a, y.a); c != 0 {
			return c
		}
		return Compare(x.b, y.b)
	}
	return 0
}

func compareLists(as, bs []Expr) int {
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

// ============================================================
// Variable collection
// ============================================================

// Vars returns the set of variable names occurring in e.
func Vars(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	collectVars(e, out)
	return out
}

// VarNames returns the sorted variable names occurring in e.
func VarNames(e Expr) []string {
	names := maps.Keys(Vars(e))
	slices.Sort(names)
	return names
}

func collectVars(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectVars(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectVars(f, out)
		}
	case *Pow:
		collectVars(v.base, out)
		collectVars(v.exp, out)
	case *Mod:
		collectVars(v.a, out)
		collectVars(v.b, out)
	case *Func:
		collectVars(v.arg, out)
	}
}

// DependsOn reports whether the named variable occurs in e.
func DependsOn(e Expr, name string) bool {
	_, ok := Vars(e)[name]
	return ok
}

// ============================================================
// Equation
// ============================================================

// Equation represents LHS = RHS. Solvers normalize it to LHS - RHS = 0.
type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns the simplified LHS - RHS.
func (e *Equation) Residual() Expr {
	return SubOf(e.LHS, e.RHS).Simplify()
}

// ============================================================
// Top-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Subst substitutes and simplifies in one step.
func Subst(e Expr, name string, value Expr) Expr {
	return e.Subst(name, value).Simplify()
}
