package cli

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/mchmarny/topicpredict/pkg/config"
	"github.com/mchmarny/topicpredict/pkg/feature"
	"github.com/mchmarny/topicpredict/pkg/predict"
)

type featureInfo struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

type predictRequest struct {
	Values map[string]float64 `json:"values"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func featuresAPIHandler(p *predict.Predictor, form config.FormConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names := p.Bundle().Important.Names()
		list := make([]featureInfo, 0, len(names))
		for _, n := range names {
			list = append(list, featureInfo{
				Name:    n,
				Min:     feature.MinValue,
				Max:     feature.MaxValue,
				Step:    form.Step,
				Default: p.Default(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"features": list,
			"classes":  p.Bundle().Decoder.Classes(),
		})
	}
}

func predictAPIHandler(p *predict.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, formMaxBytes)

		var req predictRequest
		d := json.NewDecoder(r.Body)
		d.DisallowUnknownFields()
		if err := d.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		res, status, err := runPrediction(r, p, req.Values)
		if err != nil {
			if status == http.StatusUnprocessableEntity {
				status = http.StatusBadRequest
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func healthHandler(p *predict.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		b := p.Bundle()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"version":   version,
			"features":  b.Catalog.Len(),
			"important": b.Important.Len(),
			"classes":   len(b.Decoder.Classes()),
			"loaded_at": b.LoadedAt.Format(time.RFC3339),
		})
	}
}
