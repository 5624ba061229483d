package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/topicpredict/pkg/feature"
	"github.com/mchmarny/topicpredict/pkg/model"
)

// Bundle holds every decoded artifact. It is read-only after Load and safe
// for concurrent use.
type Bundle struct {
	Catalog    *feature.Catalog
	Important  *feature.ImportantSet
	Means      *feature.Means
	Imputer    model.Imputer
	Classifier model.Classifier
	Decoder    model.Decoder
	Locations  []Location
	LoadedAt   time.Time
}

// Close releases resources held by the classifier, if any.
func (b *Bundle) Close() error {
	if b == nil {
		return nil
	}
	if c, ok := b.Classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load checks that every artifact exists, decodes them and cross-checks
// them. Missing files yield a *LoadError listing every expected artifact.
func Load(ctx context.Context, cfg Config) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locs := cfg.Locations()

	var missing []Location
	for _, l := range locs {
		info, err := os.Stat(l.Path)
		if err != nil || info.IsDir() {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{Dir: cfg.Dir, Expected: locs, Missing: missing}
	}

	paths := make(map[ID]string, len(locs))
	for _, l := range locs {
		paths[l.ID] = l.Path
	}

	var (
		allNames       []string
		importantNames []string
		means          map[string]float64
		imputer        *model.SimpleImputer
		encoder        *model.LabelEncoder
		classifier     model.Classifier
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		allNames, err = readNames(paths[AllFeatures])
		return wrapDecode(AllFeatures, err)
	})
	g.Go(func() (err error) {
		importantNames, err = readNames(paths[ImportantFeatures])
		return wrapDecode(ImportantFeatures, err)
	})
	g.Go(func() (err error) {
		means, err = readMeans(paths[FeatureMeans])
		return wrapDecode(FeatureMeans, err)
	})
	g.Go(func() (err error) {
		imputer, err = model.LoadImputer(paths[Imputer])
		return wrapDecode(Imputer, err)
	})
	g.Go(func() (err error) {
		encoder, err = model.LoadLabelEncoder(paths[Encoder])
		return wrapDecode(Encoder, err)
	})
	g.Go(func() (err error) {
		classifier, err = model.LoadClassifier(paths[Model], cfg.ONNX)
		return wrapDecode(Model, err)
	})

	if err := g.Wait(); err != nil {
		// a classifier may have opened a session before a sibling failed
		if c, ok := classifier.(io.Closer); ok {
			c.Close()
		}
		return nil, &LoadError{Dir: cfg.Dir, Expected: locs, Err: err}
	}

	b, err := assemble(allNames, importantNames, means, imputer, encoder, classifier)
	if err != nil {
		if c, ok := classifier.(io.Closer); ok {
			c.Close()
		}
		return nil, &LoadError{Dir: cfg.Dir, Expected: locs, Err: err}
	}
	b.Locations = locs
	b.LoadedAt = time.Now()

	if gaps := b.Means.Missing(b.Catalog); len(gaps) > 0 {
		slog.Warn("feature means do not cover the catalog", "missing", gaps)
	}

	slog.Debug("artifacts loaded",
		"dir", cfg.Dir,
		"features", b.Catalog.Len(),
		"important", b.Important.Len(),
		"classes", len(b.Decoder.Classes()),
	)
	return b, nil
}

func assemble(allNames, importantNames []string, means map[string]float64, imp *model.SimpleImputer, enc *model.LabelEncoder, clf model.Classifier) (*Bundle, error) {
	catalog, err := feature.NewCatalog(allNames)
	if err != nil {
		return nil, wrapDecode(AllFeatures, err)
	}
	important, err := feature.NewImportantSet(catalog, importantNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistent, err)
	}

	b := &Bundle{
		Catalog:    catalog,
		Important:  important,
		Means:      feature.NewMeans(means),
		Imputer:    imp,
		Classifier: clf,
		Decoder:    enc,
	}
	if err := checkConsistency(b, imp.FeatureNames); err != nil {
		return nil, err
	}
	return b, nil
}

func checkConsistency(b *Bundle, imputerNames []string) error {
	if w := b.Imputer.InputWidth(); w != b.Catalog.Len() {
		return fmt.Errorf("%w: imputer expects %d features, catalog has %d", ErrInconsistent, w, b.Catalog.Len())
	}
	if len(imputerNames) > 0 {
		names := b.Catalog.Names()
		for i, n := range imputerNames {
			if names[i] != n {
				return fmt.Errorf("%w: imputer column %d is %q, catalog has %q", ErrInconsistent, i, n, names[i])
			}
		}
	}
	if got, want := b.Classifier.NumFeatures(), b.Imputer.OutputWidth(); got != want {
		return fmt.Errorf("%w: classifier expects %d features, imputer produces %d", ErrInconsistent, got, want)
	}
	if got, want := b.Classifier.NumClasses(), len(b.Decoder.Classes()); got != want {
		return fmt.Errorf("%w: classifier has %d classes, label encoder has %d", ErrInconsistent, got, want)
	}
	return nil
}

func wrapDecode(id ID, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("artifact %s: %w", id, err)
}

func readNames(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return nil, fmt.Errorf("decoding feature names: %w", err)
	}
	if len(names) == 0 {
		return nil, errors.New("feature name list is empty")
	}
	return names, nil
}

// readMeans decodes the mean mapping; a null mean becomes NaN.
func readMeans(path string) (map[string]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decoding feature means: %w", err)
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if v == nil {
			out[k] = math.NaN()
			continue
		}
		out[k] = *v
	}
	return out, nil
}
