package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/njchilds90/fixpoint-explorer/internal/explore"
	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/store"
	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

type functionView struct {
	ID         uint                   `json:"id"`
	Expression string                 `json:"expression"`
	CreatedAt  time.Time              `json:"created_at"`
	LaTeX      string                 `json:"latex"`
	Constants  []string               `json:"constants"`
	Tree       map[string]interface{} `json:"tree,omitempty"`
}

func viewOf(f *store.Function, withTree bool) (functionView, error) {
	c, err := function.Canonicalize(f.Expression)
	if err != nil {
		return functionView{}, fmt.Errorf("web: stored function %d: %w", f.ID, err)
	}
	v := functionView{
		ID:         f.ID,
		Expression: f.Expression,
		CreatedAt:  f.CreatedAt,
		LaTeX:      symbolic.LaTeX(c.Expr),
		Constants:  c.Constants,
	}
	if v.Constants == nil {
		v.Constants = []string{}
	}
	if withTree {
		v.Tree = symbolic.Tree(c.Expr)
	}
	return v, nil
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	fs, err := s.functions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if fs == nil {
		fs = []store.Function{}
	}
	writeJSON(w, http.StatusOK, fs)
}

type createRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	f, err := s.functions.Create(r.Context(), req.Expression)
	s.recordValidation(err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := viewOf(f, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/functions/%d", f.ID))
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) apiGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.functions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := viewOf(f, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.functions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type evaluateRequest struct {
	Params map[string]float64 `json:"params"`
	Points int                `json:"points"`
	Min    *float64           `json:"min"`
	Max    *float64           `json:"max"`
}

type evaluateResponse struct {
	Expression string          `json:"expression"`
	Params     symbolic.Env    `json:"params"`
	Range      explore.Range   `json:"range"`
	Points     []explore.Point `json:"points"`
}

func (s *Server) apiEvaluate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	f, err := s.functions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := function.Canonicalize(f.Expression)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	env, err := function.FloatParams(c.Constants, req.Params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rng := s.plotRange()
	if req.Points != 0 {
		rng.Points = req.Points
	}
	if req.Min != nil {
		rng.Min = *req.Min
	}
	if req.Max != nil {
		rng.Max = *req.Max
	}
	if rng.Points > maxPoints {
		s.writeError(w, r, fmt.Errorf("%w: at most %d points", explore.ErrRange, maxPoints))
		return
	}
	pts, err := explore.Sample(c.Expr, env, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Expression: f.Expression, Params: env, Range: rng, Points: pts})
}

const maxPoints = 10000

func (s *Server) plotRange() explore.Range {
	return explore.Range{Min: s.plot.Min, Max: s.plot.Max, Points: s.plot.Points}
}

type limitResponse struct {
	FunctionID uint    `json:"function_id"`
	XIndex     int64   `json:"x_index"`
	YIndex     int64   `json:"y_index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Value      string  `json:"value"`
}

func (s *Server) apiLimit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	x, errX := strconv.ParseInt(r.PathValue("x"), 10, 64)
	y, errY := strconv.ParseInt(r.PathValue("y"), 10, 64)
	if errX != nil || errY != nil {
		s.writeError(w, r, fmt.Errorf("%w: indices must be integers in [0, 2^63)", store.ErrIndexRange))
		return
	}
	var l *store.Limit
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		l, err = s.explorer.Refresh(r.Context(), id, x, y)
	} else {
		l, err = s.explorer.Limit(r.Context(), id, x, y)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, limitResponse{
		FunctionID: l.FunctionID,
		XIndex:     l.XIndex,
		YIndex:     l.YIndex,
		X:          l.XValue(),
		Y:          l.YValue(),
		Value:      l.Value.String(),
	})
}
