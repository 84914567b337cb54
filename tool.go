package symgo

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// The tool layer exposes the engine over a JSON request/response surface
// so non-Go callers can drive it. Expressions travel as tagged objects
// mirroring the tree variants.

// ToJSON serializes an expression tree.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// FromJSON rebuilds an expression from its tagged-object form.
func FromJSON(data map[string]any) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]any, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}
	subObjArray := func(field string) ([]map[string]any, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]any, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}
	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}
	subFloat := func(field string) (float64, error) {
		v, ok := data[field]
		if !ok {
			return 0, fmt.Errorf("%s: missing %q", typ, field)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("%s: %q must be a number", typ, field)
		}
		return f, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "cmplx":
		re, err := subFloat("re")
		if err != nil {
			return nil, err
		}
		im, err := subFloat("im")
		if err != nil {
			return nil, err
		}
		return C(re, im), nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add":
		objs, err := subObjArray("terms")
		if err != nil {
			return nil, err
		}
		terms := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("add: terms[%d]: %w", i, err)
			}
			terms[i] = e
		}
		return AddOf(terms...), nil

	case "mul":
		objs, err := subObjArray("factors")
		if err != nil {
			return nil, err
		}
		factors := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("mul: factors[%d]: %w", i, err)
			}
			factors[i] = e
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := subObj("base")
		if err != nil {
			return nil, err
		}
		expM, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		base, err := FromJSON(baseM)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := FromJSON(expM)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil

	case "mod":
		aM, err := subObj("a")
		if err != nil {
			return nil, err
		}
		bM, err := subObj("b")
		if err != nil {
			return nil, err
		}
		a, err := FromJSON(aM)
		if err != nil {
			return nil, fmt.Errorf("mod: a: %w", err)
		}
		b, err := FromJSON(bM)
		if err != nil {
			return nil, fmt.Errorf("mod: b: %w", err)
		}
		return ModOf(a, b), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		argM, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		arg, err := FromJSON(argM)
		if err != nil {
			return nil, fmt.Errorf("func: arg: %w", err)
		}
		return funcOf(name, arg).Simplify(), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// ============================================================
// Tool interface
// ============================================================

type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	LaTeX  string `json:"latex,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleToolCall dispatches one tool request against the engine.
func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getFloat := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	getExprList := func(key string) ([]Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]Expr, len(raw))
		for i, r := range raw {
			m, ok := r.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be expression object", key, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: LaTeX(e), String: String(e)}
	}
	respondRoots := func(sols *Solutions) ToolResponse {
		if sols.Identity {
			return ToolResponse{Result: "identity", String: "all values are solutions"}
		}
		strs := make([]string, len(sols.Roots))
		objs := make([]map[string]any, len(sols.Roots))
		for i, r := range sols.Roots {
			strs[i] = String(r)
			objs[i] = r.toJSON()
		}
		return ToolResponse{Result: objs, String: strings.Join(strs, ", ")}
	}

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Simplify(e))

	case "deep_simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(DeepSimplify(e))

	case "trig_simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(TrigSimplify(e))

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Expand(e))

	case "collect":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Collect(e, v))

	case "cancel":
		num, err := getExpr("num")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		den, err := getExpr("den")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Cancel(num, den))

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Derivative(e, v))

	case "diffn":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		nF, err := getFloat("n")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if nF < 0 {
			return ToolResponse{Error: "param n must be >= 0"}
		}
		return respond(DerivativeN(e, v, int(nF)))

	case "taylor":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		about, err := getExpr("about")
		if err != nil {
			about = N(0)
		}
		orderF, err := getFloat("order")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(TaylorSeries(e, v, about, int(orderF)))

	case "integrate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := Integrate(e, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(res)

	case "definite_integrate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		a, err := getFloat("a")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		b, err := getFloat("b")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		val := DefiniteIntegrate(e, v, a, b)
		return ToolResponse{Result: val, String: fmt.Sprintf("%g", val)}

	case "solve":
		lhs, err := getExpr("lhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rhs, err := getExpr("rhs")
		if err != nil {
			rhs = N(0)
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		sols, err := Solve(Eq(lhs, rhs), v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondRoots(sols)

	case "solve_system":
		lhss, err := getExprList("lhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rhss, err := getExprList("rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if len(lhss) != len(rhss) {
			return ToolResponse{Error: "lhs and rhs must have equal length"}
		}
		eqs := make([]*Equation, len(lhss))
		for i := range lhss {
			eqs[i] = Eq(lhss[i], rhss[i])
		}
		sol, err := SolveSystem(eqs, nil)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out := map[string]any{}
		parts := []string{}
		for _, a := range sol.Sorted() {
			out[a.Variable] = a.Value.toJSON()
			parts = append(parts, a.Variable+" = "+String(a.Value))
		}
		return ToolResponse{Result: out, String: strings.Join(parts, ", ")}

	case "eval":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env := Bindings{}
		if raw, ok := req.Params["bindings"].(map[string]any); ok {
			for name, vv := range raw {
				f, ok := vv.(float64)
				if !ok {
					return ToolResponse{Error: fmt.Sprintf("binding %s must be a number", name)}
				}
				env[name] = complex(f, 0)
			}
		}
		val, err := Eval(e, env)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if imag(val) == 0 {
			return ToolResponse{Result: real(val), String: fmt.Sprintf("%g", real(val))}
		}
		return ToolResponse{
			Result: map[string]any{"re": real(val), "im": imag(val)},
			String: fmt.Sprintf("%g%+gi", real(val), imag(val)),
		}

	case "free_symbols":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		names := VarNames(e)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "degree":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		d := Degree(e, v)
		return ToolResponse{Result: d, String: fmt.Sprintf("%d", d)}

	case "poly_coeffs":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		p, err := PolyFromExpr(e, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		objs := make([]map[string]any, len(p.Coeffs))
		strs := make([]string, len(p.Coeffs))
		for i, c := range p.Coeffs {
			objs[i] = c.toJSON()
			strs[i] = String(c)
		}
		return ToolResponse{Result: objs, String: "[" + strings.Join(strs, ", ") + "]"}

	case "latex":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: LaTeX(e), LaTeX: LaTeX(e), String: String(e)}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolNames lists the tools HandleToolCall accepts.
func ToolNames() []string {
	return []string{
		"simplify", "deep_simplify", "trig_simplify", "expand", "collect",
		"cancel", "diff", "diffn", "taylor", "integrate",
		"definite_integrate", "solve", "solve_system", "eval",
		"free_symbols", "degree", "poly_coeffs", "latex",
	}
}
