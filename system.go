package symgo

import (
	"fmt"

	"github.com/rjNemo/underscore"
	"golang.org/x/exp/slices"
)

// The system solver is substitution-elimination: each round it finds an
// equation linear in some unknown, isolates that unknown, and substitutes
// the result everywhere else. An equation that ends up nonlinear in a single
// unknown is solved last through the equation solver. Identities drop out,
// a residual that simplifies to a nonzero constant is a contradiction, and
// a round cap bounds pathological back-and-forth rewriting.

const maxEliminationRounds = 64

// SystemSolution binds each solved variable to an expression. Order lists
// the variables by first appearance across the input equations.
type SystemSolution struct {
	Assignments map[string]Expr
	Order       []string
}

// Sorted returns the assignments as (variable, value) pairs in Order.
func (s *SystemSolution) Sorted() []Assignment {
	return underscore.Map(s.Order, func(name string) Assignment {
		return Assignment{Variable: name, Value: s.Assignments[name]}
	})
}

// Assignment is one solved variable of a system.
type Assignment struct {
	Variable string
	Value    Expr
}

// SolveSystem solves the equations for the named unknowns. A nil unknowns
// slice means every variable appearing in the system, in first-appearance
// order. An equation left with a single nonlinear unknown after the linear
// eliminations goes to the single-equation solver. ErrInconsistentSystem
// reports a contradiction; ErrNoConvergence an elimination that stalls or
// exceeds the round cap.
func SolveSystem(eqs []*Equation, unknowns []string) (*SystemSolution, error) {
	if unknowns == nil {
		unknowns = systemVariables(eqs)
	}

	residuals := underscore.Map(eqs, func(eq *Equation) Expr { return eq.Residual() })
	residuals, err := pruneResiduals(residuals)
	if err != nil {
		return nil, err
	}

	solved := map[string]Expr{}
	for round := 0; len(residuals) > 0; round++ {
		if round >= maxEliminationRounds {
			return nil, fmt.Errorf("%w: elimination exceeded %d rounds", ErrNoConvergence, maxEliminationRounds)
		}
		name, value, idx, found := pickElimination(residuals, unknowns, solved)
		if !found {
			var nerr error
			name, value, idx, found, nerr = solveTerminal(residuals, unknowns, solved)
			if nerr != nil {
				return nil, nerr
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no equation is linear in a remaining unknown", ErrNoConvergence)
		}

		rest := make([]Expr, 0, len(residuals)-1)
		for i, r := range residuals {
			if i != idx {
				rest = append(rest, r.Subst(name, value).Simplify())
			}
		}
		residuals, err = pruneResiduals(rest)
		if err != nil {
			return nil, err
		}

		for prev, v := range solved {
			solved[prev] = v.Subst(name, value).Simplify()
		}
		solved[name] = value
	}

	backSubstitute(solved)
	order := underscore.Filter(unknowns, func(n string) bool {
		_, ok := solved[n]
		return ok
	})
	return &SystemSolution{Assignments: solved, Order: order}, nil
}

// pruneResiduals drops identities and reports contradictions.
func pruneResiduals(residuals []Expr) ([]Expr, error) {
	out := make([]Expr, 0, len(residuals))
	for _, r := range residuals {
		// Expand so that substituted products collapse; -1*(y-1) + y - 2
		// only reveals its constant value after distribution.
		r = Expand(r)
		if n, ok := r.Const(); ok {
			if n.IsZero() {
				continue
			}
			return nil, fmt.Errorf("%w: residual %s is a nonzero constant", ErrInconsistentSystem, r.String())
		}
		out = append(out, r)
	}
	return out, nil
}

// pickElimination scans for the first (equation, unknown) pair where the
// equation is linear in the unknown with a coefficient free of it, and
// returns the isolated value.
func pickElimination(residuals []Expr, unknowns []string, solved map[string]Expr) (string, Expr, int, bool) {
	for i, r := range residuals {
		for _, name := range unknowns {
			if _, done := solved[name]; done {
				continue
			}
			if !DependsOn(r, name) {
				continue
			}
			coeffs := PolyCoeffs(r, name)
			c1, ok := coeffs[1]
			if !ok || DependsOn(c1, name) {
				continue
			}
			if deg := maxKey(coeffs); deg != 1 {
				continue
			}
			if n, isNum := c1.(*Num); isNum && n.IsZero() {
				continue
			}
			c0 := coeffs[0]
			if c0 == nil {
				c0 = N(0)
			}
			value := DivOf(NegOf(c0), c1).Simplify()
			if DependsOn(value, name) {
				continue
			}
			return name, value, i, true
		}
	}
	return "", nil, 0, false
}

// solveTerminal handles the residual the linear eliminations left behind:
// an equation whose only remaining unknown is nonlinear goes to the
// single-equation solver, and the first root consistent with the other
// residuals is taken.
func solveTerminal(residuals []Expr, unknowns []string, solved map[string]Expr) (string, Expr, int, bool, error) {
	for i, r := range residuals {
		name, ok := soleUnknown(r, unknowns, solved)
		if !ok {
			continue
		}
		sols, err := solveResidual(r.Simplify(), name)
		if err != nil || sols.Identity {
			continue
		}
		if len(sols.Roots) == 0 {
			return "", nil, 0, false, fmt.Errorf("%w: no value of %s satisfies %s", ErrInconsistentSystem, name, r.String())
		}
		for _, root := range sols.Roots {
			if consistentRoot(residuals, i, name, root) {
				return name, root, i, true, nil
			}
		}
		return "", nil, 0, false, fmt.Errorf("%w: no root of %s satisfies the other equations", ErrInconsistentSystem, r.String())
	}
	return "", nil, 0, false, nil
}

// soleUnknown reports the single unsolved unknown r depends on, if there is
// exactly one.
func soleUnknown(r Expr, unknowns []string, solved map[string]Expr) (string, bool) {
	found := ""
	for _, name := range unknowns {
		if _, done := solved[name]; done {
			continue
		}
		if !DependsOn(r, name) {
			continue
		}
		if found != "" {
			return "", false
		}
		found = name
	}
	return found, found != ""
}

func consistentRoot(residuals []Expr, skip int, name string, value Expr) bool {
	for i, r := range residuals {
		if i == skip {
			continue
		}
		s := Expand(r.Subst(name, value))
		if n, ok := s.Const(); ok && !n.IsZero() {
			return false
		}
	}
	return true
}

func maxKey(m map[int]Expr) int {
	maxDeg := 0
	for d, c := range m {
		if n, ok := c.(*Num); ok && n.IsZero() {
			continue
		}
		if d > maxDeg {
			maxDeg = d
		}
	}
	return maxDeg
}

// backSubstitute rewrites each assignment in terms of ground values until
// no solved variable references another.
func backSubstitute(solved map[string]Expr) {
	for i := 0; i < len(solved); i++ {
		changed := false
		for name, value := range solved {
			for other, otherVal := range solved {
				if other == name || !DependsOn(value, other) {
					continue
				}
				value = value.Subst(other, otherVal).Simplify()
				changed = true
			}
			solved[name] = value
		}
		if !changed {
			return
		}
	}
}

// systemVariables lists every variable across the equations in first
// appearance order.
func systemVariables(eqs []*Equation) []string {
	out := []string{}
	for _, eq := range eqs {
		appendVarsInOrder(eq.LHS, &out)
		appendVarsInOrder(eq.RHS, &out)
	}
	return out
}

func appendVarsInOrder(e Expr, out *[]string) {
	switch v := e.(type) {
	case *Sym:
		if !slices.Contains(*out, v.name) {
			*out = append(*out, v.name)
		}
	case *Add:
		for _, t := range v.terms {
			appendVarsInOrder(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			appendVarsInOrder(f, out)
		}
	case *Pow:
		appendVarsInOrder(v.base, out)
		appendVarsInOrder(v.exp, out)
	case *Mod:
		appendVarsInOrder(v.a, out)
		appendVarsInOrder(v.b, out)
	case *Func:
		appendVarsInOrder(v.arg, out)
	}
}
