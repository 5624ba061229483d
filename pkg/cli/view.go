package cli

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mchmarny/topicpredict/pkg/config"
	"github.com/mchmarny/topicpredict/pkg/feature"
	"github.com/mchmarny/topicpredict/pkg/metrics"
	"github.com/mchmarny/topicpredict/pkg/predict"
)

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64) + "%"
	},
}

type formField struct {
	ID    string
	Name  string
	Value string
}

type formPage struct {
	Title   string
	Version string
	Min     float64
	Max     float64
	Step    float64
	Columns int
	Fields  []formField
	Result  *predict.Result
	Error   string
}

func faviconHandler(w http.ResponseWriter, r *http.Request) {
	file, err := embedFS.ReadFile("assets/img/favicon.svg")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err = w.Write(file); err != nil {
		slog.Error("failed to write favicon", "error", err)
	}
}

func newFormPage(p *predict.Predictor, form config.FormConfig, raw map[string]string) *formPage {
	names := p.Bundle().Important.Names()
	page := &formPage{
		Title:   form.Title,
		Version: version,
		Min:     feature.MinValue,
		Max:     feature.MaxValue,
		Step:    form.Step,
		Columns: form.Columns,
		Fields:  make([]formField, 0, len(names)),
	}
	def := strconv.FormatFloat(p.Default(), 'f', 1, 64)
	for i, n := range names {
		v, ok := raw[n]
		if !ok {
			v = def
		}
		page.Fields = append(page.Fields, formField{
			ID:    "f" + strconv.Itoa(i),
			Name:  n,
			Value: v,
		})
	}
	return page
}

func renderForm(w http.ResponseWriter, tmpl *template.Template, status int, page *formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "home", page); err != nil {
		slog.Error("template render failed", "error", err)
	}
}

func formViewHandler(tmpl *template.Template, p *predict.Predictor, form config.FormConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		renderForm(w, tmpl, http.StatusOK, newFormPage(p, form, nil))
	}
}

func formSubmitHandler(tmpl *template.Template, p *predict.Predictor, form config.FormConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, formMaxBytes)
		if err := r.ParseForm(); err != nil {
			page := newFormPage(p, form, nil)
			page.Error = "Could not read the submitted form."
			renderForm(w, tmpl, http.StatusBadRequest, page)
			return
		}

		raw := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				raw[k] = strings.TrimSpace(v[len(v)-1])
			}
		}
		page := newFormPage(p, form, raw)

		values := make(map[string]float64, len(raw))
		for k, v := range raw {
			if v == "" {
				continue
			}
			f, err := feature.ParseValue(k, v)
			if err != nil {
				metrics.RecordInvalidInput()
				page.Error = err.Error()
				renderForm(w, tmpl, http.StatusUnprocessableEntity, page)
				return
			}
			values[k] = f
		}

		res, status, err := runPrediction(r, p, values)
		if err != nil {
			page.Error = err.Error()
			renderForm(w, tmpl, status, page)
			return
		}
		page.Result = res
		renderForm(w, tmpl, http.StatusOK, page)
	}
}

// runPrediction validates values and predicts. The returned status
// classifies the error for the response.
func runPrediction(r *http.Request, p *predict.Predictor, values map[string]float64) (*predict.Result, int, error) {
	in, err := p.Input(values)
	if err != nil {
		slog.Debug("rejected input", "error", err)
		metrics.RecordInvalidInput()
		return nil, http.StatusUnprocessableEntity, err
	}

	res, err := p.Predict(r.Context(), in)
	switch {
	case err == nil:
		return res, http.StatusOK, nil
	case errors.Is(err, feature.ErrMissingFeature):
		slog.Error("model artifacts are inconsistent", "error", err)
		return nil, http.StatusInternalServerError, err
	default:
		slog.Error("prediction failed", "error", err)
		return nil, http.StatusInternalServerError, err
	}
}
