package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// LabelEncoder decodes class codes using the training-time class ordering.
type LabelEncoder struct {
	classes []string
}

// NewLabelEncoder builds an encoder from the ordered class labels.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	seen := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("label encoder has an empty class")
		}
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("duplicate class in label encoder: %q", c)
		}
		seen[c] = struct{}{}
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return &LabelEncoder{classes: out}, nil
}

// LoadLabelEncoder reads the encoder from JSON.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading label encoder: %w", err)
	}
	return ParseLabelEncoder(b)
}

// ParseLabelEncoder accepts {"classes": [...]}, a bare array, or an
// index map such as {"0": "AI", "1": "Networking"}.
func ParseLabelEncoder(b []byte) (*LabelEncoder, error) {
	var wrapped struct {
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && len(wrapped.Classes) > 0 {
		return NewLabelEncoder(wrapped.Classes)
	}

	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil && len(arr) > 0 {
		return NewLabelEncoder(arr)
	}

	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding label encoder: %w", err)
	}

	out := make([]string, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid class index %q: %w", k, err)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("class index %d out of range", idx)
		}
		out[idx] = v
	}
	return NewLabelEncoder(out)
}

// Classes returns a copy of the labels in code order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("class code %d out of range [0, %d)", code, len(e.classes))
	}
	return e.classes[code], nil
}
