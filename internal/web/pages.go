package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/njchilds90/fixpoint-explorer/internal/explore"
	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/store"
	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadPages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := map[string]*template.Template{}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[base] = t
	}
	return pages, nil
}

// render executes a page into a buffer first so a template error becomes a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	t, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown page", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("page", page),
			zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	msg := userMessage(err)
	if status == http.StatusNotFound {
		if id := r.PathValue("id"); id != "" {
			msg = fmt.Sprintf("Function %s does not exist!", id)
		}
	}
	s.render(w, r, status, "error.html", errorPage{Title: http.StatusText(status), Status: status, Message: msg})
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

// ---- INDEX ----

type indexPage struct {
	Title     string
	Functions []store.Function
	Input     string
	Error     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, "", "")
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, input, message string) {
	functions, err := s.functions.List(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, status, "index.html", indexPage{Title: "Functions", Functions: functions, Input: input, Error: message})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "", "invalid form submission")
		return
	}
	input := r.PostFormValue("expression")
	f, err := s.functions.Create(r.Context(), input)
	s.recordValidation(err)
	var ve *function.ValidationError
	if errors.As(err, &ve) {
		s.renderIndex(w, r, http.StatusUnprocessableEntity, input, ve.Error())
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/functions/"+strconv.FormatUint(uint64(f.ID), 10), http.StatusSeeOther)
}

// ---- DETAIL ----

type paramField struct {
	Name  string
	Value string
}

type detailPage struct {
	Title    string
	Function functionView
	Params   []paramField
	Plot     *Plot
	Error    string
}

func (s *Server) loadDetail(r *http.Request) (detailPage, error) {
	id, err := pathID(r)
	if err != nil {
		return detailPage{}, err
	}
	f, err := s.functions.Get(r.Context(), id)
	if err != nil {
		return detailPage{}, err
	}
	v, err := viewOf(f, false)
	if err != nil {
		return detailPage{}, err
	}
	page := detailPage{Title: f.Expression, Function: v}
	for _, c := range v.Constants {
		page.Params = append(page.Params, paramField{Name: c})
	}
	return page, nil
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	page, err := s.loadDetail(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	// Functions without constants can be plotted straight away.
	if len(page.Params) == 0 {
		if err := s.plotInto(&page, nil); err != nil {
			s.renderError(w, r, err)
			return
		}
	}
	s.render(w, r, http.StatusOK, "detail.html", page)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	page, err := s.loadDetail(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		page.Error = "invalid form submission"
		s.render(w, r, http.StatusBadRequest, "detail.html", page)
		return
	}
	values := map[string]string{}
	for i, p := range page.Params {
		page.Params[i].Value = r.PostFormValue(p.Name)
		values[p.Name] = page.Params[i].Value
	}
	env, err := function.ParseParams(page.Function.Constants, values)
	if err != nil {
		page.Error = userMessage(err)
		s.render(w, r, statusOf(err), "detail.html", page)
		return
	}
	if err := s.plotInto(&page, env); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "detail.html", page)
}

func (s *Server) plotInto(page *detailPage, env symbolic.Env) error {
	c, err := function.Canonicalize(page.Function.Expression)
	if err != nil {
		return err
	}
	rng := s.plotRange()
	pts, err := explore.Sample(c.Expr, env, rng)
	if err != nil {
		return err
	}
	page.Plot = newPlot(pts, rng)
	return nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.functions.Delete(r.Context(), id); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
