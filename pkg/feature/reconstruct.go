package feature

import "errors"

// Reconstruct builds the full feature vector for one submission: means for
// every feature, overwritten by the user input, read in catalog order.
// The shared means are never modified. A catalog feature without a value
// yields a *MissingFeatureError.
func Reconstruct(c *Catalog, m *Means, in *UserInput) (Vector, error) {
	if c == nil || m == nil {
		return nil, errors.New("catalog and means required")
	}

	working := make(map[string]float64, c.Len())
	for _, n := range c.names {
		if v, ok := m.values[n]; ok {
			working[n] = v
		}
	}
	if in != nil {
		for n, v := range in.values {
			working[n] = v
		}
	}

	vec := make(Vector, c.Len())
	for i, n := range c.names {
		v, ok := working[n]
		if !ok {
			return nil, &MissingFeatureError{Name: n}
		}
		vec[i] = v
	}
	return vec, nil
}
