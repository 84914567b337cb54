package symgo

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Eval computes the numeric value of e with every variable bound by env.
// A missing binding surfaces ErrUnboundVariable; applying a function outside
// its domain surfaces ErrDomain. Arithmetic and the exp/trig/hyperbolic
// functions accept complex bindings; the inverse trig functions and ln keep
// real-domain checks for real arguments, which is the documented limitation
// of the complex extension.
func Eval(e Expr, env Bindings) (complex128, error) {
	return e.eval(env)
}

// EvalReal evaluates and narrows to float64, rejecting results with a
// non-negligible imaginary part.
func EvalReal(e Expr, env Bindings) (float64, error) {
	v, err := e.eval(env)
	if err != nil {
		return 0, err
	}
	if math.Abs(imag(v)) > zeroTol {
		return 0, fmt.Errorf("%w: non-real result %v", ErrDomain, v)
	}
	return real(v), nil
}

func (n *Num) eval(Bindings) (complex128, error) {
	return complex(n.Float64(), 0), nil
}

func (c *Cmplx) eval(Bindings) (complex128, error) {
	return c.Complex(), nil
}

func (s *Sym) eval(env Bindings) (complex128, error) {
	v, ok := env[s.name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundVariable, s.name)
	}
	return v, nil
}

func (a *Add) eval(env Bindings) (complex128, error) {
	acc := complex128(0)
	for _, t := range a.terms {
		v, err := t.eval(env)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return acc, nil
}

func (m *Mul) eval(env Bindings) (complex128, error) {
	acc := complex128(1)
	for _, f := range m.factors {
		v, err := f.eval(env)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return acc, nil
}

func (p *Pow) eval(env Bindings) (complex128, error) {
	b, err := p.base.eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.eval(env)
	if err != nil {
		return 0, err
	}
	if b == 0 {
		if e == 0 {
			return 0, fmt.Errorf("%w: 0^0", ErrDomain)
		}
		if real(e) < 0 {
			return 0, fmt.Errorf("%w: zero base with negative exponent", ErrDomain)
		}
		return 0, nil
	}
	if imag(b) == 0 && imag(e) == 0 {
		bf, ef := real(b), real(e)
		if bf > 0 || ef == math.Trunc(ef) {
			return complex(math.Pow(bf, ef), 0), nil
		}
	}
	return cmplx.Pow(b, e), nil
}

func (m *Mod) eval(env Bindings) (complex128, error) {
	a, err := m.a.eval(env)
	if err != nil {
		return 0, err
	}
	b, err := m.b.eval(env)
	if err != nil {
		return 0, err
	}
	if imag(a) != 0 || imag(b) != 0 {
		return 0, fmt.Errorf("%w: mod of complex value", ErrDomain)
	}
	if real(b) == 0 {
		return 0, fmt.Errorf("%w: mod by zero", ErrDomain)
	}
	return complex(math.Mod(real(a), real(b)), 0), nil
}

func (f *Func) eval(env Bindings) (complex128, error) {
	v, err := f.arg.eval(env)
	if err != nil {
		return 0, err
	}
	if imag(v) == 0 {
		return evalFuncReal(f.name, real(v))
	}
	return evalFuncComplex(f.name, v)
}

func evalFuncReal(name string, v float64) (complex128, error) {
	switch name {
	case "sin":
		return complex(math.Sin(v), 0), nil
	case "cos":
		return complex(math.Cos(v), 0), nil
	case "tan":
		return complex(math.Tan(v), 0), nil
	case "sec":
		return complex(1/math.Cos(v), 0), nil
	case "csc":
		if v == 0 {
			return 0, fmt.Errorf("%w: csc(0)", ErrDomain)
		}
		return complex(1/math.Sin(v), 0), nil
	case "cot":
		if v == 0 {
			return 0, fmt.Errorf("%w: cot(0)", ErrDomain)
		}
		return complex(1/math.Tan(v), 0), nil
	case "exp":
		return complex(math.Exp(v), 0), nil
	case "ln":
		if v <= 0 {
			return 0, fmt.Errorf("%w: ln(%g)", ErrDomain, v)
		}
		return complex(math.Log(v), 0), nil
	case "asin":
		if v < -1 || v > 1 {
			return 0, fmt.Errorf("%w: asin(%g)", ErrDomain, v)
		}
		return complex(math.Asin(v), 0), nil
	case "acos":
		if v < -1 || v > 1 {
			return 0, fmt.Errorf("%w: acos(%g)", ErrDomain, v)
		}
		return complex(math.Acos(v), 0), nil
	case "atan":
		return complex(math.Atan(v), 0), nil
	case "sinh":
		return complex(math.Sinh(v), 0), nil
	case "cosh":
		return complex(math.Cosh(v), 0), nil
	case "tanh":
		return complex(math.Tanh(v), 0), nil
	case "abs":
		return complex(math.Abs(v), 0), nil
	case "floor":
		return complex(math.Floor(v), 0), nil
	case "ceil":
		return complex(math.Ceil(v), 0), nil
	case "sign":
		switch {
		case v > 0:
			return complex(1, 0), nil
		case v < 0:
			return complex(-1, 0), nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: unknown function %s", ErrDomain, name)
}

func evalFuncComplex(name string, v complex128) (complex128, error) {
	switch name {
	case "sin":
		return cmplx.Sin(v), nil
	case "cos":
		return cmplx.Cos(v), nil
	case "tan":
		return cmplx.Tan(v), nil
	case "sec":
		return 1 / cmplx.Cos(v), nil
	case "csc":
		return 1 / cmplx.Sin(v), nil
	case "cot":
		return cmplx.Cot(v), nil
	case "exp":
		return cmplx.Exp(v), nil
	case "ln":
		return cmplx.Log(v), nil
	case "sinh":
		return cmplx.Sinh(v), nil
	case "cosh":
		return cmplx.Cosh(v), nil
	case "tanh":
		return cmplx.Tanh(v), nil
	case "abs":
		return complex(cmplx.Abs(v), 0), nil
	}
	return 0, fmt.Errorf("%w: %s of complex value", ErrDomain, name)
}
