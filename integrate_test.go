package symgo_test

import (
	"errors"
	"math"
	"testing"
	"testing/quick"

	"github.com/symgo-dev/symgo"
)

func TestIntegrate_PowerRule(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.PowOf(x, symgo.N(3)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "1/4*x^4" {
		t.Errorf("want 1/4*x^4, got %s", symgo.String(got))
	}
}

func TestIntegrate_Reciprocal(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.PowOf(x, symgo.N(-1)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "ln(abs(x))" {
		t.Errorf("want ln(abs(x)), got %s", symgo.String(got))
	}
}

func TestIntegrate_Constant(t *testing.T) {
	got, err := symgo.Integrate(symgo.S("a"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "a*x" {
		t.Errorf("want a*x, got %s", symgo.String(got))
	}
}

func TestIntegrate_Sin(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.SinOf(x), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "-1*cos(x)" {
		t.Errorf("want -1*cos(x), got %s", symgo.String(got))
	}
}

func TestIntegrate_SecSquared(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.PowOf(symgo.SecOf(x), symgo.N(2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "tan(x)" {
		t.Errorf("want tan(x), got %s", symgo.String(got))
	}
}

func TestIntegrate_SumRule(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.AddOf(x, symgo.CosOf(x)), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := symgo.Simplify(symgo.AddOf(
		symgo.MulOf(symgo.F(1, 2), symgo.PowOf(x, symgo.N(2))),
		symgo.SinOf(x),
	))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", symgo.String(want), symgo.String(got))
	}
}

func TestIntegrate_ConstantMultiple(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.MulOf(symgo.N(5), symgo.CosOf(x)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "5*sin(x)" {
		t.Errorf("want 5*sin(x), got %s", symgo.String(got))
	}
}

func TestIntegrate_Exponential(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.ExpOf(x), "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "exp(x)" {
		t.Errorf("want exp(x), got %s", symgo.String(got))
	}
}

func TestIntegrate_NumericBase(t *testing.T) {
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.PowOf(symgo.N(2), x), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := symgo.Simplify(symgo.DivOf(symgo.PowOf(symgo.N(2), x), symgo.LnOf(symgo.N(2))))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", symgo.String(want), symgo.String(got))
	}
}

func TestIntegrate_USubstitution(t *testing.T) {
	// 2x*cos(x^2) -> sin(x^2)
	x := symgo.S("x")
	e := symgo.MulOf(symgo.N(2), x, symgo.CosOf(symgo.PowOf(x, symgo.N(2))))
	got, err := symgo.Integrate(e, "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "sin(x^2)" {
		t.Errorf("want sin(x^2), got %s", symgo.String(got))
	}
}

func TestIntegrate_LogDerivative(t *testing.T) {
	// 2x/(x^2+1) -> ln|x^2+1|
	x := symgo.S("x")
	u := symgo.AddOf(symgo.PowOf(x, symgo.N(2)), symgo.N(1))
	e := symgo.MulOf(symgo.N(2), x, symgo.PowOf(u, symgo.N(-1)))
	got, err := symgo.Integrate(e, "x")
	if err != nil {
		t.Fatal(err)
	}
	want := symgo.Simplify(symgo.LnOf(symgo.AbsOf(u)))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", symgo.String(want), symgo.String(got))
	}
}

func TestIntegrate_ByParts(t *testing.T) {
	// x*ln(x): check by differentiating the antiderivative.
	x := symgo.S("x")
	e := symgo.Simplify(symgo.MulOf(x, symgo.LnOf(x)))
	got, err := symgo.Integrate(e, "x")
	if err != nil {
		t.Fatal(err)
	}
	back := symgo.Derivative(got, "x")
	if !back.Equal(e) {
		t.Errorf("d/dx of antiderivative should be %s, got %s", symgo.String(e), symgo.String(back))
	}
}

func TestIntegrate_LoneLogByParts(t *testing.T) {
	// ln(x) -> x*ln(x) - x
	x := symgo.S("x")
	got, err := symgo.Integrate(symgo.LnOf(x), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := symgo.Simplify(symgo.SubOf(symgo.MulOf(x, symgo.LnOf(x)), x))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", symgo.String(want), symgo.String(got))
	}
}

func TestIntegrate_InverseTrigAtan(t *testing.T) {
	x := symgo.S("x")
	e := symgo.PowOf(symgo.AddOf(symgo.PowOf(x, symgo.N(2)), symgo.N(1)), symgo.N(-1))
	got, err := symgo.Integrate(e, "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "atan(x)" {
		t.Errorf("want atan(x), got %s", symgo.String(got))
	}
}

func TestIntegrate_InverseTrigAsin(t *testing.T) {
	x := symgo.S("x")
	e := symgo.PowOf(
		symgo.SubOf(symgo.N(1), symgo.PowOf(x, symgo.N(2))),
		symgo.F(-1, 2),
	)
	got, err := symgo.Integrate(e, "x")
	if err != nil {
		t.Fatal(err)
	}
	if symgo.String(got) != "asin(x)" {
		t.Errorf("want asin(x), got %s", symgo.String(got))
	}
}

func TestIntegrate_NoRule(t *testing.T) {
	x := symgo.S("x")
	_, err := symgo.Integrate(symgo.LnOf(symgo.LnOf(x)), "x")
	if !errors.Is(err, symgo.ErrNoIntegrationRule) {
		t.Errorf("want ErrNoIntegrationRule, got %v", err)
	}
}

func TestIntegrate_DepthCap(t *testing.T) {
	// exp(x)*sin(x) cycles through integration by parts forever.
	x := symgo.S("x")
	_, err := symgo.Integrate(symgo.MulOf(symgo.ExpOf(x), symgo.SinOf(x)), "x")
	if !errors.Is(err, symgo.ErrDepthExceeded) {
		t.Errorf("want ErrDepthExceeded, got %v", err)
	}
}

// Differentiating the antiderivative of x^n must return x^n.
func TestIntegrate_DiffRoundTrip(t *testing.T) {
	x := symgo.S("x")
	prop := func(raw uint8) bool {
		n := int64(raw%6) + 1
		e := symgo.PowOf(x, symgo.N(n))
		anti, err := symgo.Integrate(e, "x")
		if err != nil {
			return false
		}
		return symgo.Derivative(anti, "x").Equal(symgo.Simplify(e))
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestDefiniteIntegrate_Quadratic(t *testing.T) {
	x := symgo.S("x")
	got := symgo.DefiniteIntegrate(symgo.PowOf(x, symgo.N(2)), "x", 0, 1)
	if math.Abs(got-1.0/3.0) > 1e-6 {
		t.Errorf("integral of x^2 over [0,1] should be 1/3, got %g", got)
	}
}

func TestDefiniteIntegrate_Sin(t *testing.T) {
	x := symgo.S("x")
	got := symgo.DefiniteIntegrate(symgo.SinOf(x), "x", 0, math.Pi)
	if math.Abs(got-2) > 1e-6 {
		t.Errorf("integral of sin over [0,pi] should be 2, got %g", got)
	}
}
