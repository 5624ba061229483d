package artifact

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArtifactLoad is matched by every load failure.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrInconsistent marks artifacts that do not agree with each other.
	ErrInconsistent = errors.New("inconsistent artifacts")
)

// LoadError reports a failed load. When files are missing, Missing lists
// them and Expected lists every artifact the loader needs.
type LoadError struct {
	Dir      string
	Expected []Location
	Missing  []Location
	Err      error
}

func (e *LoadError) Error() string {
	if len(e.Missing) > 0 {
		missing := make([]string, 0, len(e.Missing))
		for _, m := range e.Missing {
			missing = append(missing, m.Path)
		}
		expected := make([]string, 0, len(e.Expected))
		for _, l := range e.Expected {
			expected = append(expected, l.Path)
		}
		return fmt.Sprintf("model artifacts not found: %s (all of these are required: %s)",
			strings.Join(missing, ", "), strings.Join(expected, ", "))
	}
	return fmt.Sprintf("loading model artifacts from %s: %v", e.Dir, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrArtifactLoad
}
