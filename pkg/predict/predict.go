// Package predict runs the loaded pipeline on one user input: reconstruct
// the full feature vector, impute, classify and decode the topic.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mchmarny/topicpredict/pkg/artifact"
	"github.com/mchmarny/topicpredict/pkg/feature"
	"github.com/mchmarny/topicpredict/pkg/metrics"
)

const (
	// sumTolerance is how far a probability row may drift from 1 before it is rejected.
	sumTolerance = 1e-3
)

// ClassProbability is the probability of one topic.
type ClassProbability struct {
	Label       string  `json:"label" yaml:"label"`
	Probability float64 `json:"probability" yaml:"probability"`
	Percent     float64 `json:"percent" yaml:"percent"`
	Max         bool    `json:"max,omitempty" yaml:"max,omitempty"`
}

// Result is the outcome of one prediction. Probabilities follow the label
// decoder class order and sum to 1.
type Result struct {
	Label         string             `json:"label" yaml:"label"`
	Code          int                `json:"code" yaml:"code"`
	Confidence    float64            `json:"confidence" yaml:"confidence"`
	Probabilities []ClassProbability `json:"probabilities" yaml:"probabilities"`
}

func (r *Result) clone() *Result {
	c := *r
	c.Probabilities = append([]ClassProbability(nil), r.Probabilities...)
	return &c
}

// Option configures a Predictor.
type Option func(*Predictor) error

// WithCache memoizes up to size results keyed by the reconstructed vector.
// A size of zero or less disables the memo.
func WithCache(size int) Option {
	return func(p *Predictor) error {
		if size <= 0 {
			return nil
		}
		c, err := lru.New[string, *Result](size)
		if err != nil {
			return fmt.Errorf("creating prediction cache: %w", err)
		}
		p.memo = c
		return nil
	}
}

// WithDefault sets the value used for important features the user left out.
func WithDefault(v float64) Option {
	return func(p *Predictor) error {
		p.def = v
		return nil
	}
}

// Predictor is safe for concurrent use.
type Predictor struct {
	bundle *artifact.Bundle
	memo   *lru.Cache[string, *Result]
	def    float64
}

// New creates a Predictor over a loaded bundle.
func New(b *artifact.Bundle, opts ...Option) (*Predictor, error) {
	if b == nil {
		return nil, errors.New("artifact bundle required")
	}
	p := &Predictor{bundle: b, def: feature.DefaultValue}
	for _, o := range opts {
		if err := o(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Bundle returns the artifacts the predictor runs on.
func (p *Predictor) Bundle() *artifact.Bundle {
	return p.bundle
}

// Default is the value shown for, and used in place of, an unset field.
func (p *Predictor) Default() float64 {
	return p.def
}

// Input validates raw values against the important features.
func (p *Predictor) Input(values map[string]float64) (*feature.UserInput, error) {
	return feature.NewUserInput(p.bundle.Important, values, p.def)
}

// Predict returns the recommended topic for in. A *feature.MissingFeatureError
// is returned as is; pipeline failures are *Error.
func (p *Predictor) Predict(ctx context.Context, in *feature.UserInput) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	vec, err := feature.Reconstruct(p.bundle.Catalog, p.bundle.Means, in)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeFailure, "", time.Since(start))
		slog.Error("feature vector reconstruction failed", "error", err)
		return nil, err
	}

	var key string
	if p.memo != nil {
		key = vectorKey(vec)
		if r, ok := p.memo.Get(key); ok {
			metrics.RecordPrediction(metrics.OutcomeCached, r.Label, time.Since(start))
			return r.clone(), nil
		}
	}

	r, err := p.run(vec)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeFailure, "", time.Since(start))
		return nil, err
	}

	if p.memo != nil {
		p.memo.Add(key, r.clone())
	}
	metrics.RecordPrediction(metrics.OutcomeSuccess, r.Label, time.Since(start))
	slog.Debug("prediction",
		"label", r.Label,
		"confidence", r.Confidence,
		"duration", time.Since(start),
	)
	return r, nil
}

func (p *Predictor) run(vec feature.Vector) (*Result, error) {
	x, err := p.bundle.Imputer.Transform(vec.Row())
	if err != nil {
		return nil, stageError(StageImpute, err)
	}

	codes, err := p.bundle.Classifier.Predict(x)
	if err != nil {
		return nil, stageError(StageClassify, err)
	}
	probas, err := p.bundle.Classifier.PredictProba(x)
	if err != nil {
		return nil, stageError(StageClassify, err)
	}
	if len(codes) != 1 || len(probas) != 1 {
		return nil, stageError(StageClassify, fmt.Errorf("expected 1 prediction, got %d codes and %d probability rows", len(codes), len(probas)))
	}

	classes := p.bundle.Decoder.Classes()
	proba, err := normalize(probas[0], len(classes))
	if err != nil {
		return nil, stageError(StageProbability, err)
	}

	code := codes[0]
	label, err := p.bundle.Decoder.Decode(code)
	if err != nil {
		return nil, stageError(StageDecode, err)
	}

	r := &Result{
		Label:         label,
		Code:          code,
		Confidence:    proba[code] * 100,
		Probabilities: make([]ClassProbability, len(classes)),
	}
	best := 0
	for i, c := range classes {
		r.Probabilities[i] = ClassProbability{
			Label:       c,
			Probability: proba[i],
			Percent:     proba[i] * 100,
		}
		if proba[i] > proba[best] {
			best = i
		}
	}
	r.Probabilities[best].Max = true
	return r, nil
}

// normalize checks a probability row and rescales it to sum to 1.
func normalize(row []float64, classes int) ([]float64, error) {
	if len(row) != classes {
		return nil, fmt.Errorf("probability row has %d entries, label encoder has %d classes", len(row), classes)
	}
	var total float64
	for i, v := range row {
		if math.IsNaN(v) || v < 0 {
			return nil, fmt.Errorf("invalid probability %v for class %d", v, i)
		}
		total += v
	}
	if math.Abs(total-1) > sumTolerance {
		return nil, fmt.Errorf("probabilities sum to %v", total)
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = v / total
	}
	return out, nil
}

func vectorKey(v feature.Vector) string {
	var sb strings.Builder
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return sb.String()
}
