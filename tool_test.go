package symgo_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/symgo-dev/symgo"
)

func jsym(name string) map[string]any {
	return map[string]any{"type": "sym", "name": name}
}

func jnum(value string) map[string]any {
	return map[string]any{"type": "num", "value": value}
}

func jadd(terms ...any) map[string]any {
	return map[string]any{"type": "add", "terms": terms}
}

func jpow(base, exp map[string]any) map[string]any {
	return map[string]any{"type": "pow", "base": base, "exp": exp}
}

func TestJSON_RoundTrip(t *testing.T) {
	x := symgo.S("x")
	e := symgo.Simplify(symgo.AddOf(
		symgo.PowOf(x, symgo.N(2)),
		symgo.MulOf(symgo.F(1, 3), x),
		symgo.SinOf(x),
	))
	s, err := symgo.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		t.Fatal(err)
	}
	back, err := symgo.FromJSON(obj)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(e) {
		t.Errorf("round trip changed the tree: %s vs %s", symgo.String(back), symgo.String(e))
	}
}

func TestFromJSON_RejectsMalformed(t *testing.T) {
	cases := []map[string]any{
		nil,
		{"value": "3"},
		{"type": "num"},
		{"type": "num", "value": "not-a-number"},
		{"type": "wat"},
		{"type": "add", "terms": "x"},
	}
	for _, c := range cases {
		if _, err := symgo.FromJSON(c); err == nil {
			t.Errorf("FromJSON(%v) should fail", c)
		}
	}
}

func TestTool_Simplify(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool:   "simplify",
		Params: map[string]any{"expr": jadd(jsym("x"), jsym("x"))},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "2*x" {
		t.Errorf("want 2*x, got %s", resp.String)
	}
}

func TestTool_Diff(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool: "diff",
		Params: map[string]any{
			"expr": jpow(jsym("x"), jnum("3")),
			"var":  "x",
		},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "3*x^2" {
		t.Errorf("want 3*x^2, got %s", resp.String)
	}
}

func TestTool_Solve(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool: "solve",
		Params: map[string]any{
			"lhs": jadd(jpow(jsym("x"), jnum("2")), jnum("-1")),
			"var": "x",
		},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "1, -1" {
		t.Errorf("want \"1, -1\", got %q", resp.String)
	}
}

func TestTool_SolveIdentity(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool: "solve",
		Params: map[string]any{
			"lhs": jsym("x"),
			"rhs": jsym("x"),
			"var": "x",
		},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "all values are solutions" {
		t.Errorf("unexpected identity rendering %q", resp.String)
	}
}

func TestTool_SolveSystem(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool: "solve_system",
		Params: map[string]any{
			"lhs": []any{
				jadd(jsym("x"), jsym("y")),
				jadd(jsym("x"), map[string]any{
					"type":    "mul",
					"factors": []any{jnum("-1"), jsym("y")},
				}),
			},
			"rhs": []any{jnum("1"), jnum("1")},
		},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "x = 1, y = 0" {
		t.Errorf("want \"x = 1, y = 0\", got %q", resp.String)
	}
}

func TestTool_Eval(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool: "eval",
		Params: map[string]any{
			"expr":     jpow(jsym("x"), jnum("2")),
			"bindings": map[string]any{"x": 3.0},
		},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "9" {
		t.Errorf("want 9, got %s", resp.String)
	}
}

func TestTool_EvalUnbound(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool:   "eval",
		Params: map[string]any{"expr": jsym("x")},
	})
	if resp.Error == "" {
		t.Error("evaluating an unbound variable should report an error")
	}
}

func TestTool_DefiniteIntegrate(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool: "definite_integrate",
		Params: map[string]any{
			"expr": jpow(jsym("x"), jnum("2")),
			"var":  "x",
			"a":    0.0,
			"b":    1.0,
		},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	got, ok := resp.Result.(float64)
	if !ok {
		t.Fatalf("result should be a float, got %T", resp.Result)
	}
	if math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("want 1/3, got %g", got)
	}
}

func TestTool_FreeSymbols(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{
		Tool:   "free_symbols",
		Params: map[string]any{"expr": jadd(jsym("b"), jsym("a"))},
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "a, b" {
		t.Errorf("want \"a, b\", got %q", resp.String)
	}
}

func TestTool_Unknown(t *testing.T) {
	resp := symgo.HandleToolCall(symgo.ToolRequest{Tool: "nope"})
	if resp.Error == "" {
		t.Error("unknown tool should report an error")
	}
}
