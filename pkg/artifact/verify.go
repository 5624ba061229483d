package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileStatus describes one artifact file on disk.
type FileStatus struct {
	ID     ID     `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
	Size   int64  `json:"size,omitempty" yaml:"size,omitempty"`
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

// Verify reports presence, size and checksum of every artifact without
// decoding them. The returned error is a *LoadError when any are missing.
func Verify(cfg Config) ([]FileStatus, error) {
	locs := cfg.Locations()
	out := make([]FileStatus, 0, len(locs))
	var missing []Location

	for _, l := range locs {
		st := FileStatus{ID: l.ID, Path: l.Path}
		info, err := os.Stat(l.Path)
		if err != nil || info.IsDir() {
			missing = append(missing, l)
			out = append(out, st)
			continue
		}
		st.Exists = true
		st.Size = info.Size()

		sum, err := hashFile(l.Path)
		if err != nil {
			return out, &LoadError{Dir: cfg.Dir, Expected: locs, Err: err}
		}
		st.SHA256 = sum
		out = append(out, st)
	}

	if len(missing) > 0 {
		return out, &LoadError{Dir: cfg.Dir, Expected: locs, Missing: missing}
	}
	return out, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
