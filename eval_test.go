package symgo_test

import (
	"errors"
	"math"
	"testing"
	"testing/quick"

	"github.com/symgo-dev/symgo"
)

func TestEvalReal_Polynomial(t *testing.T) {
	x := symgo.S("x")
	e := symgo.AddOf(symgo.PowOf(x, symgo.N(2)), symgo.N(1))
	got, err := symgo.EvalReal(e, symgo.Bindings{"x": 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != 10 {
		t.Errorf("want 10, got %g", got)
	}
}

func TestEval_UnboundVariable(t *testing.T) {
	_, err := symgo.Eval(symgo.S("x"), symgo.Bindings{})
	if !errors.Is(err, symgo.ErrUnboundVariable) {
		t.Errorf("want ErrUnboundVariable, got %v", err)
	}
}

func TestEval_LnDomain(t *testing.T) {
	_, err := symgo.Eval(symgo.LnOf(symgo.S("x")), symgo.Bindings{"x": -1})
	if !errors.Is(err, symgo.ErrDomain) {
		t.Errorf("ln(-1) should report a domain error, got %v", err)
	}
}

func TestEval_AsinDomain(t *testing.T) {
	_, err := symgo.Eval(symgo.AsinOf(symgo.S("x")), symgo.Bindings{"x": 2})
	if !errors.Is(err, symgo.ErrDomain) {
		t.Errorf("asin(2) should report a domain error, got %v", err)
	}
}

func TestEval_ZeroPowZero(t *testing.T) {
	e := symgo.PowOf(symgo.N(0), symgo.N(0))
	_, err := symgo.Eval(e, nil)
	if !errors.Is(err, symgo.ErrDomain) {
		t.Errorf("0^0 should report a domain error, got %v", err)
	}
}

func TestEval_ModByZero(t *testing.T) {
	e := symgo.ModOf(symgo.S("a"), symgo.S("b"))
	_, err := symgo.Eval(e, symgo.Bindings{"a": 1, "b": 0})
	if !errors.Is(err, symgo.ErrDomain) {
		t.Errorf("mod by zero should report a domain error, got %v", err)
	}
}

func TestEval_ModReal(t *testing.T) {
	e := symgo.ModOf(symgo.S("a"), symgo.N(3))
	got, err := symgo.EvalReal(e, symgo.Bindings{"a": 7.5})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1.5) > 1e-12 {
		t.Errorf("7.5 mod 3 should be 1.5, got %g", got)
	}
}

func TestEval_ComplexPower(t *testing.T) {
	e := symgo.PowOf(symgo.S("x"), symgo.N(2))
	got, err := symgo.Eval(e, symgo.Bindings{"x": complex(0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(real(got)+1) > 1e-9 || math.Abs(imag(got)) > 1e-9 {
		t.Errorf("i^2 should be -1, got %v", got)
	}
}

func TestEval_ComplexExp(t *testing.T) {
	// exp(i*pi) = -1
	e := symgo.ExpOf(symgo.S("z"))
	got, err := symgo.Eval(e, symgo.Bindings{"z": complex(0, math.Pi)})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(real(got)+1) > 1e-9 || math.Abs(imag(got)) > 1e-9 {
		t.Errorf("exp(i*pi) should be -1, got %v", got)
	}
}

func TestEvalReal_RejectsComplexResult(t *testing.T) {
	e := symgo.SqrtOf(symgo.S("x"))
	_, err := symgo.EvalReal(e, symgo.Bindings{"x": -4})
	if !errors.Is(err, symgo.ErrDomain) {
		t.Errorf("real sqrt of -4 should be rejected, got %v", err)
	}
}

func TestEval_SymbolicFoldMatchesEval(t *testing.T) {
	// ln(2) stays symbolic in the tree but evaluates on demand.
	got, err := symgo.EvalReal(symgo.LnOf(symgo.N(2)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-math.Log(2)) > 1e-12 {
		t.Errorf("want ln 2, got %g", got)
	}
}

func TestEval_SimplifyPreservesValue(t *testing.T) {
	x, y := symgo.S("x"), symgo.S("y")
	exprs := []symgo.Expr{
		symgo.AddOf(x, x, symgo.MulOf(symgo.N(3), y), symgo.N(-2)),
		symgo.MulOf(x, x, symgo.PowOf(x, symgo.N(-1))),
		symgo.AddOf(symgo.MulOf(symgo.SinOf(x), symgo.SinOf(x)),
			symgo.MulOf(symgo.CosOf(x), symgo.CosOf(x)), y),
		symgo.PowOf(symgo.PowOf(x, symgo.N(2)), symgo.N(3)),
		symgo.MulOf(symgo.F(1, 2), symgo.AddOf(x, y), symgo.N(2)),
	}
	for _, e := range exprs {
		e := e
		prop := func(xv, yv float64) bool {
			// Keep bindings in a range where every node is defined and
			// x*x*x^-1 does not divide by zero.
			xb := math.Mod(math.Abs(xv), 10) + 0.5
			yb := math.Mod(math.Abs(yv), 10) + 0.5
			env := symgo.Bindings{"x": complex(xb, 0), "y": complex(yb, 0)}
			a, err := symgo.EvalReal(e, env)
			if err != nil {
				return false
			}
			b, err := symgo.EvalReal(symgo.Simplify(e), env)
			if err != nil {
				return false
			}
			return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(a))
		}
		if err := quick.Check(prop, &quick.Config{MaxCount: 50}); err != nil {
			t.Errorf("%s: %v", symgo.String(e), err)
		}
	}
}
