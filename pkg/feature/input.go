package feature

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MinValue and MaxValue bound every user-supplied grade.
	MinValue = 0.0
	MaxValue = 100.0

	// DefaultValue is what the form shows before the user edits a field.
	DefaultValue = 75.0

	rangeRule = "gte=0,lte=100"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UserInput maps important feature names to user-supplied values.
type UserInput struct {
	values map[string]float64
}

// NewUserInput checks values against the important set. Names outside the set
// are rejected, values outside [MinValue, MaxValue] are rejected and important
// features that were not supplied take def.
func NewUserInput(s *ImportantSet, values map[string]float64, def float64) (*UserInput, error) {
	if s == nil {
		return nil, fmt.Errorf("important feature set required: %w", ErrInvalidInput)
	}

	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if !s.Contains(n) {
			return nil, &UnknownFeatureError{Name: n}
		}
		if err := validate.Var(values[n], rangeRule); err != nil {
			return nil, &RangeError{Name: n, Value: values[n]}
		}
	}

	in := &UserInput{values: make(map[string]float64, s.Len())}
	for _, n := range s.names {
		v, ok := values[n]
		if !ok {
			v = def
		}
		in.values[n] = v
	}
	return in, nil
}

// Get returns the value supplied for the named feature.
func (u *UserInput) Get(name string) (float64, bool) {
	if u == nil {
		return 0, false
	}
	v, ok := u.values[name]
	return v, ok
}

func (u *UserInput) Len() int {
	if u == nil {
		return 0
	}
	return len(u.values)
}

// Values returns a copy of the input mapping.
func (u *UserInput) Values() map[string]float64 {
	out := make(map[string]float64, u.Len())
	if u == nil {
		return out
	}
	for k, v := range u.values {
		out[k] = v
	}
	return out
}

// ParseValue converts a raw form or flag value for the named feature.
func ParseValue(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q for %q is not a number: %w", raw, name, ErrInvalidInput)
	}
	return v, nil
}

// ParseAssignments parses "name=value" pairs. The last assignment of a name wins.
func ParseAssignments(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		i := strings.LastIndex(p, "=")
		if i <= 0 {
			return nil, fmt.Errorf("expected name=value, got %q: %w", p, ErrInvalidInput)
		}
		name := strings.TrimSpace(p[:i])
		v, err := ParseValue(name, p[i+1:])
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
