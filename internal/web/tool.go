package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/njchilds90/fixpoint-explorer/internal/explore"
	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

// ============================================================
// Tool calls: stateless operations on an expression string
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (s *Server) apiTool(w http.ResponseWriter, r *http.Request) {
	var req ToolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, HandleToolCall(req))
}

func (s *Server) apiSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toolSpec())
}

// HandleToolCall runs one tool. Failures are reported in the Error field.
func HandleToolCall(req ToolRequest) ToolResponse {
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
	getNumber := func(key string) (float64, error) {
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
	getCanonical := func() (function.Canonical, error) {
		raw, err := getString("expr")
		if err != nil {
			return function.Canonical{}, err
		}
		return function.Canonicalize(raw)
	}
	getEnv := func(c function.Canonical) (symbolic.Env, error) {
		values := map[string]float64{}
		if v, ok := req.Params["params"]; ok {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param params must be an object")
			}
			for name, raw := range m {
				f, ok := raw.(float64)
				if !ok {
					return nil, fmt.Errorf("params.%s must be a number", name)
				}
				values[name] = f
			}
		}
		return function.FloatParams(c.Constants, values)
	}
	respond := func(e symbolic.Expr) ToolResponse {
		return ToolResponse{Result: symbolic.Tree(e), LaTeX: symbolic.LaTeX(e), String: symbolic.String(e)}
	}

	switch req.Tool {
	case "canonicalize":
		c, err := getCanonical()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(c.Expr)

	case "to_latex":
		c, err := getCanonical()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: symbolic.LaTeX(c.Expr), LaTeX: symbolic.LaTeX(c.Expr)}

	case "free_symbols":
		c, err := getCanonical()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: symbolic.SortedSymbols(c.Expr)}

	case "diff":
		c, err := getCanonical()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(symbolic.Diff(c.Expr, function.Variable))

	case "evaluate":
		c, err := getCanonical()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		z, err := getNumber("z")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env, err := getEnv(c)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env[function.Variable] = z
		v := c.Expr.Float(env)
		b, err := json.Marshal(v)
		if err != nil {
			return ToolResponse{Error: "value is not a finite number"}
		}
		return ToolResponse{Result: json.RawMessage(b), String: string(b)}

	case "iterate":
		c, err := getCanonical()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		z0, err := getNumber("z0")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		env, err := getEnv(c)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := explore.Iterate(c.Expr, env, z0, explore.DefaultOptions())
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: res, String: fmt.Sprint(res.Value)}

	case "equation":
		raw, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		node, err := symbolic.Parse(raw)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		eq, ok := node.(*symbolic.Equation)
		if !ok || eq.Op != "=" {
			return ToolResponse{Error: "expr must be an equation lhs = rhs"}
		}
		c, err := function.Canonicalize(symbolic.String(eq.Residual().Simplify()))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: symbolic.Tree(c.Expr), LaTeX: eq.LaTeX(), String: c.Expression}

	case "tool_spec":
		return ToolResponse{Result: toolSpec(), String: "tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func toolSpec() map[string]interface{} {
	tools := []map[string]interface{}{
		ts("canonicalize", "Validate a function of one variable and rewrite it in z", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("to_latex", "Convert the canonical form to LaTeX", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("free_symbols", "Return the variable and constant names", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("diff", "First derivative d/dz of the canonical form", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("evaluate", "Evaluate at z. Constants come from params", []string{"expr", "z"}, map[string]string{"expr": "string", "z": "number", "params": "object"}),
		ts("iterate", "Fixed-point iteration z -> f(z) from z0", []string{"expr", "z0"}, map[string]string{"expr": "string", "z0": "number", "params": "object"}),
		ts("equation", "Rewrite lhs = rhs as the canonical residual lhs - rhs", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	return map[string]interface{}{"tools": tools}
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
