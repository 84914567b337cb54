package symgo_test

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/symgo-dev/symgo"
)

func rootStrings(t *testing.T, sols *symgo.Solutions) []string {
	t.Helper()
	out := make([]string, len(sols.Roots))
	for i, r := range sols.Roots {
		out[i] = symgo.String(r)
	}
	return out
}

func TestSolve_Quadratic(t *testing.T) {
	x := symgo.S("x")
	eq := symgo.Eq(symgo.SubOf(symgo.PowOf(x, symgo.N(2)), symgo.N(1)), symgo.N(0))
	sols, err := symgo.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "-1"}
	if diff := cmp.Diff(want, rootStrings(t, sols)); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_FactoredForm(t *testing.T) {
	x := symgo.S("x")
	lhs := symgo.MulOf(
		symgo.SubOf(x, symgo.N(1)),
		symgo.SubOf(x, symgo.N(2)),
	)
	sols, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	// Factors are kept in canonical order, so x-2 is visited first.
	want := []string{"2", "1"}
	if diff := cmp.Diff(want, rootStrings(t, sols)); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_FactoredForm_DedupesRepeatedRoot(t *testing.T) {
	x := symgo.S("x")
	f := symgo.SubOf(x, symgo.N(1))
	g := symgo.SubOf(symgo.MulOf(symgo.N(2), x), symgo.N(2))
	sols, err := symgo.Solve(symgo.Eq(symgo.MulOf(f, g), symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 1 || symgo.String(sols.Roots[0]) != "1" {
		t.Errorf("want single root 1, got %v", rootStrings(t, sols))
	}
}

func TestSolve_Identity(t *testing.T) {
	x := symgo.S("x")
	sols, err := symgo.Solve(symgo.Eq(x, x), "x")
	if err != nil {
		t.Fatal(err)
	}
	if !sols.Identity {
		t.Error("x = x should be an identity")
	}
}

func TestSolve_ExpandedIdentity(t *testing.T) {
	// The two sides only cancel after expansion.
	x := symgo.S("x")
	lhs := symgo.PowOf(symgo.AddOf(x, symgo.N(1)), symgo.N(2))
	rhs := symgo.AddOf(symgo.PowOf(x, symgo.N(2)), symgo.MulOf(symgo.N(2), x), symgo.N(1))
	sols, err := symgo.Solve(symgo.Eq(lhs, rhs), "x")
	if err != nil {
		t.Fatal(err)
	}
	if !sols.Identity {
		t.Errorf("(x+1)^2 = x^2+2x+1 should be an identity, got roots %v", rootStrings(t, sols))
	}
}

func TestSolve_ConstantContradiction(t *testing.T) {
	sols, err := symgo.Solve(symgo.Eq(symgo.N(1), symgo.N(2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if sols.Identity || len(sols.Roots) != 0 {
		t.Errorf("1 = 2 should have no solutions, got %v", sols)
	}
}

func TestSolve_PowerMultiplicity(t *testing.T) {
	x := symgo.S("x")
	sols, err := symgo.Solve(symgo.Eq(symgo.PowOf(x, symgo.N(3)), symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0", "0", "0"}
	if diff := cmp.Diff(want, rootStrings(t, sols)); diff != "" {
		t.Errorf("x^3 = 0 should have a triple root (-want +got):\n%s", diff)
	}
}

func TestSolve_ComplexQuadratic(t *testing.T) {
	x := symgo.S("x")
	eq := symgo.Eq(symgo.AddOf(symgo.PowOf(x, symgo.N(2)), symgo.N(1)), symgo.N(0))
	sols, err := symgo.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0 + 1i", "0 - 1i"}
	if diff := cmp.Diff(want, rootStrings(t, sols)); diff != "" {
		t.Errorf("x^2+1 = 0 roots mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_SymbolicQuadratic(t *testing.T) {
	x := symgo.S("x")
	lhs := symgo.AddOf(
		symgo.MulOf(symgo.S("a"), symgo.PowOf(x, symgo.N(2))),
		symgo.MulOf(symgo.S("b"), x),
		symgo.S("c"),
	)
	sols, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 2 {
		t.Fatalf("want 2 symbolic roots, got %d", len(sols.Roots))
	}
	for _, r := range sols.Roots {
		if !symgo.DependsOn(r, "a") || !symgo.DependsOn(r, "b") {
			t.Errorf("symbolic root should mention the coefficients, got %s", symgo.String(r))
		}
	}
}

func TestSolve_SymbolicLinear(t *testing.T) {
	x := symgo.S("x")
	lhs := symgo.AddOf(symgo.MulOf(symgo.S("a"), x), symgo.S("b"))
	sols, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := symgo.Simplify(symgo.DivOf(symgo.NegOf(symgo.S("b")), symgo.S("a")))
	if len(sols.Roots) != 1 || !sols.Roots[0].Equal(want) {
		t.Errorf("want %s, got %v", symgo.String(want), rootStrings(t, sols))
	}
}

func TestSolve_CubicRealRoots(t *testing.T) {
	// x^3 - 6x^2 + 11x - 6 = (x-1)(x-2)(x-3)
	x := symgo.S("x")
	lhs := symgo.AddOf(
		symgo.PowOf(x, symgo.N(3)),
		symgo.MulOf(symgo.N(-6), symgo.PowOf(x, symgo.N(2))),
		symgo.MulOf(symgo.N(11), x),
		symgo.N(-6),
	)
	sols, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 3 {
		t.Fatalf("want 3 roots, got %d", len(sols.Roots))
	}
	got := make([]float64, 3)
	for i, r := range sols.Roots {
		v, err := symgo.EvalReal(r, nil)
		if err != nil {
			t.Fatal(err)
		}
		got[i] = v
	}
	sort.Float64s(got)
	for i, want := range []float64{1, 2, 3} {
		if math.Abs(got[i]-want) > 1e-6 {
			t.Errorf("root %d: want %g, got %g", i, want, got[i])
		}
	}
}

func TestSolve_CubicTripleRoot(t *testing.T) {
	// (x-2)^3 expanded
	x := symgo.S("x")
	lhs := symgo.Expand(symgo.PowOf(symgo.SubOf(x, symgo.N(2)), symgo.N(3)))
	sols, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 3 {
		t.Fatalf("want triple root, got %d roots", len(sols.Roots))
	}
	for _, r := range sols.Roots {
		v, err := symgo.EvalReal(r, nil)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(v-2) > 1e-6 {
			t.Errorf("want 2, got %g", v)
		}
	}
}

func TestSolve_CubicComplexPair(t *testing.T) {
	// x^3 - 1 = 0: one real root, one conjugate pair.
	x := symgo.S("x")
	sols, err := symgo.Solve(symgo.Eq(symgo.SubOf(symgo.PowOf(x, symgo.N(3)), symgo.N(1)), symgo.N(0)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 3 {
		t.Fatalf("want 3 roots, got %d", len(sols.Roots))
	}
	real0, err := symgo.EvalReal(sols.Roots[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(real0-1) > 1e-6 {
		t.Errorf("real root should be 1, got %g", real0)
	}
	c1, ok1 := sols.Roots[1].(*symgo.Cmplx)
	c2, ok2 := sols.Roots[2].(*symgo.Cmplx)
	if !ok1 || !ok2 {
		t.Fatal("remaining roots should be complex literals")
	}
	if math.Abs(imag(c1.Complex())+imag(c2.Complex())) > 1e-9 {
		t.Error("complex roots should be conjugate")
	}
}

func TestSolve_IsolationSin(t *testing.T) {
	x := symgo.S("x")
	eq := symgo.Eq(symgo.SinOf(x), symgo.F(1, 2))
	sols, err := symgo.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 1 || symgo.String(sols.Roots[0]) != "asin(1/2)" {
		t.Errorf("want asin(1/2), got %v", rootStrings(t, sols))
	}
}

func TestSolve_IsolationExp(t *testing.T) {
	x := symgo.S("x")
	eq := symgo.Eq(symgo.ExpOf(x), symgo.N(5))
	sols, err := symgo.Solve(eq, "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 1 || symgo.String(sols.Roots[0]) != "ln(5)" {
		t.Errorf("want ln(5), got %v", rootStrings(t, sols))
	}
}

func TestSolve_UnsupportedDegree(t *testing.T) {
	x := symgo.S("x")
	lhs := symgo.AddOf(symgo.PowOf(x, symgo.N(5)), x, symgo.N(1))
	_, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if !errors.Is(err, symgo.ErrUnsupportedDegree) {
		t.Errorf("want ErrUnsupportedDegree, got %v", err)
	}
}

func TestSolve_NotPolynomial(t *testing.T) {
	x := symgo.S("x")
	lhs := symgo.AddOf(symgo.SinOf(x), x)
	_, err := symgo.Solve(symgo.Eq(lhs, symgo.N(0)), "x")
	if !errors.Is(err, symgo.ErrNotPolynomial) {
		t.Errorf("want ErrNotPolynomial, got %v", err)
	}
}

func TestSolve_IsolationFifthPower(t *testing.T) {
	// x^5 = 32 isolates through the power even though the degree is high.
	x := symgo.S("x")
	sols, err := symgo.Solve(symgo.Eq(symgo.PowOf(x, symgo.N(5)), symgo.N(32)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(sols.Roots) != 1 {
		t.Fatalf("want 1 root, got %d", len(sols.Roots))
	}
	v, err := symgo.EvalReal(sols.Roots[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-2) > 1e-9 {
		t.Errorf("want 2, got %g", v)
	}
}
